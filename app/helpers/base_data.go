package helpers

import (
	"net/http"

	"github.com/gorilla/csrf"
)

const siteTitle = "HeartScript"

// GetBaseData fills the fields every page view model carries. Values already
// present in pageSpecificData win.
func GetBaseData(r *http.Request, pageSpecificData map[string]interface{}) map[string]interface{} {
	if pageSpecificData == nil {
		pageSpecificData = make(map[string]interface{})
	}

	if _, exists := pageSpecificData["Title"]; !exists {
		pageSpecificData["Title"] = siteTitle
	}

	user := GetSessionUser(r.Context())
	pageSpecificData["User"] = user
	pageSpecificData["IsLoggedIn"] = user != nil
	pageSpecificData["IsAdmin"] = IsAdmin(r.Context())
	if _, exists := pageSpecificData["MessageStatus"]; !exists {
		pageSpecificData["MessageStatus"] = r.URL.Query().Get("status")
	}
	if _, exists := pageSpecificData["Message"]; !exists {
		pageSpecificData["Message"] = r.URL.Query().Get("message")
	}
	pageSpecificData["CSRFToken"] = csrf.Token(r)

	return pageSpecificData
}
