package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmcdole/scrapedeck/internal/domain"
)

const (
	NoticeEmptyTarget   = "Please enter a URL"
	NoticeInvalidTarget = "Please enter a valid URL"
)

const targetRules = "required,startswith=http"

var validate = validator.New()

// ValidateTarget trims raw and checks it is a non-empty http(s) target.
// It returns the trimmed target that should be sent to the service.
func ValidateTarget(raw string) (string, error) {
	target := strings.TrimSpace(raw)

	if err := validate.Var(target, targetRules); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return "", domain.ErrEmptyTarget
		}
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidTarget, target)
	}
	return target, nil
}

// ValidationNotice maps a ValidateTarget error to the message shown to the user.
func ValidationNotice(err error) string {
	if errors.Is(err, domain.ErrEmptyTarget) {
		return NoticeEmptyTarget
	}
	return NoticeInvalidTarget
}
