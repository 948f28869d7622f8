package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/model"
	"todo-api/internal/transport/http/middleware"
	"todo-api/internal/transport/http/response"
)

type UserHandler struct {
	accounts *app.AccountService
	logger   *slog.Logger
}

type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserHandler(accounts *app.AccountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "invalid request payload")
		return
	}

	user, err := h.accounts.Create(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, newUserView(user))
}

func (h *UserHandler) List(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	users, err := h.accounts.List(c.Request.Context(), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	response.OK(c, gin.H{"users": views})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, newUserView(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "invalid request payload")
		return
	}

	user, err := h.accounts.Update(c.Request.Context(), identity, id, req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, newUserView(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), identity, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Message(c, "User deleted successfully")
}

func (r UserRequest) input() app.AccountInput {
	return app.AccountInput{Username: r.Username, Email: r.Email, Password: r.Password}
}

func newUserView(u *model.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}
