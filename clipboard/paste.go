package clipboard

import "time"

// PasteAndSubmit pastes the clipboard and then taps Enter, with a short
// gap so the target application has processed the paste first.
func PasteAndSubmit() error {
	if err := Paste(); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return Submit()
}
