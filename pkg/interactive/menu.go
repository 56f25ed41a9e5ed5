// Package interactive provides terminal user interface components
package interactive

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
)

// ErrExit is returned when the user cancels a prompt
var ErrExit = errors.New("exit")

// SelectOne prompts the user to pick one option.
func SelectOne(message string, options []string) (string, error) {
	var selected string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", ErrExit
	}

	return selected, nil
}

// AskPath prompts the user for a file path with a suggestion default.
func AskPath(message, defaultPath string) (string, error) {
	var path string
	prompt := &survey.Input{
		Message: message,
		Default: defaultPath,
	}

	if err := survey.AskOne(prompt, &path); err != nil {
		return "", ErrExit
	}

	return path, nil
}
