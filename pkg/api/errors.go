package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/warblr-app/warblr/pkg/tweets"
)

// writeError maps domain errors onto HTTP responses. Unknown errors are
// logged in full and surface as a bare 500.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	var domainErr *tweets.Error
	if errors.As(err, &domainErr) {
		status := http.StatusInternalServerError
		switch domainErr.Code {
		case tweets.ErrCodeValidation:
			status = http.StatusUnprocessableEntity
		case tweets.ErrCodeNotFound:
			status = http.StatusNotFound
		case tweets.ErrCodeNotEditable:
			status = http.StatusForbidden
		case tweets.ErrCodeConflict:
			status = http.StatusConflict
		}

		body := gin.H{
			"error": domainErr.Message,
			"code":  domainErr.Code,
		}
		if len(domainErr.Details) > 0 {
			body["details"] = domainErr.Details
		}
		c.JSON(status, body)
		return
	}

	log.WithError(err).WithField("request_id", c.GetString(ctxRequestIDKey)).
		Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
