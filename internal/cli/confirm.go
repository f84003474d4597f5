package cli

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// confirmFunc asks a yes/no question, allowing it to be mocked in tests.
var confirmFunc = confirm

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok).
				Affirmative("Yes").
				Negative("No"),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
