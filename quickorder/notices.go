package quickorder

import (
	"fmt"

	"autoparts-storefront/models"
)

func success(msg string) models.Notice {
	return models.Notice{Level: models.NoticeSuccess, Message: msg}
}
func failure(msg string) models.Notice { return models.Notice{Level: models.NoticeError, Message: msg} }
func info(msg string) models.Notice    { return models.Notice{Level: models.NoticeInfo, Message: msg} }
func warning(msg string) models.Notice {
	return models.Notice{Level: models.NoticeWarning, Message: msg}
}

// CartAddMessage is the toast shown after a single product lands in the cart
func CartAddMessage(name string, qty int) string {
	return fmt.Sprintf("🛒 Added %d × %s", qty, name)
}

// hintNotices returns one warning per obsolete line that names a replacement
func hintNotices(items []models.ValidatedItem) []models.Notice {
	var notices []models.Notice
	for _, it := range items {
		if hint, ok := SubstituteHint(it); ok {
			notices = append(notices, warning(hint))
		}
	}
	return notices
}

// backendNotice picks the shopper-facing message for a failed backend call
func backendNotice(err error, rejected, transport string) models.Notice {
	if be, ok := AsBackendError(err); ok && !be.Transport() {
		return failure(be.UserMessage(rejected))
	}
	return failure(transport)
}
