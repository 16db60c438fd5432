package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// User-facing messages
const (
	msgInternal        = "आंतरिक सर्वर त्रुटि"
	msgBadRequest      = "अमान्य अनुरोध"
	msgMissingFields   = "कृपया सभी आवश्यक फ़ील्ड सही से भरें"
	msgChannelInactive = "यह सेवा अभी उपलब्ध नहीं है"
	msgMisconfigured   = "ईमेल सेवा ठीक से कॉन्फ़िगर नहीं है"
	msgUnsupported     = "असमर्थित ईमेल सेवा"
	msgSendFailed      = "संदेश भेजने में विफल। कृपया बाद में पुनः प्रयास करें"
	msgContactSent     = "आपका संदेश सफलतापूर्वक भेज दिया गया है"
	msgSubmissionSent  = "आपकी खबर सफलतापूर्वक भेज दी गई है"
	msgSearchFailed    = "खोज में त्रुटि हुई। कृपया पुनः प्रयास करें"
	msgTagRequired     = "टैग आवश्यक है"
	msgUnauthorized    = "अनधिकृत अनुरोध"
)

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}
