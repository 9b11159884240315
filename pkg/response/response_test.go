package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/learner-grades-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSON(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, []int{1, 2}, map[string]interface{}{"count": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":[1,2],"meta":{"count":2}}`, w.Body.String())
}

func TestError(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.ErrMismatchedCourse)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":{"code":"MISMATCHED_COURSE","message":"Invalid input: AssignmentGroup does not belong to the provided course.","status":422}}`, w.Body.String())
	assert.Len(t, c.Errors, 1)

	c, w = newContext()
	Error(c, errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error","status":500}}`, w.Body.String())
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "report.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
