// Package clipboard delivers dictated text to the focused application
// via the system clipboard and synthetic paste keystrokes.
package clipboard

import cb "github.com/atotto/clipboard"

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}
