package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetVisitByIDRequiresAuthenticatedActor(t *testing.T) {
	db, mock := newHandlerDB(t)
	h := NewVisitHandler(db, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/visits/visit-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "visit-1"}}

	h.GetVisitByID(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
