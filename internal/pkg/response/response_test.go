package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/flight-checker/internal/pkg/apperror"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("AppError uses its status", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, apperror.New(http.StatusUnprocessableEntity, "instructor not found"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.JSONEq(t, `{"error":"instructor not found"}`, w.Body.String())
	})

	t.Run("Unknown error hides details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, errors.New("connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	})
}

func TestNewListResponse(t *testing.T) {
	empty := NewListResponse[string](nil)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.Total)

	full := NewListResponse([]int{1, 2, 3})
	assert.Equal(t, 3, full.Total)
}
