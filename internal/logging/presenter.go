// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	apperrors "eduautismo/cli/internal/errors"
)

// PresentError formats an error for user display with masking. Classified
// errors show only their localized message; anything else is masked verbatim.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if apperrors.KindOf(err) != apperrors.Unknown {
		return fmt.Sprintf("%s: %s", context, apperrors.MessageOf(err))
	}
	return fmt.Sprintf("%s: %s", context, Mask(apperrors.MessageOf(err)))
}
