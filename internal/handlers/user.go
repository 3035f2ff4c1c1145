package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/requestdata"
)

type UserHandler struct {
	userRepo repos.UserRepo
}

func NewUserHandler(userRepo repos.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GET /api/user
func (h *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("missing or invalid token"))
		return
	}

	users, err := h.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{rd.UserID})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch user"))
		return
	}
	if len(users) == 0 {
		RespondError(c, http.StatusNotFound, apierr.CodeInternal, fmt.Errorf("user not found"))
		return
	}
	RespondOK(c, gin.H{"user": users[0]})
}
