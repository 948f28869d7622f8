package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/model"
	"todo-api/internal/transport/http/middleware"
	"todo-api/internal/transport/http/response"
)

type TodoHandler struct {
	todoService *app.TodoService
	logger      *slog.Logger
}

// CreateTodoRequest needs every key present. Title and description may be
// empty strings.
type CreateTodoRequest struct {
	Title       *string         `json:"title" binding:"required"`
	Description *string         `json:"description" binding:"required"`
	State       model.TodoState `json:"state" binding:"required"`
}

// PatchTodoRequest leaves a field untouched when it is absent from the body.
type PatchTodoRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	State       *model.TodoState `json:"state"`
}

type todoView struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	State       model.TodoState `json:"state"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewTodoHandler(todoService *app.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todoService: todoService, logger: logger}
}

func (h *TodoHandler) Create(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "invalid request payload")
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), identity, app.TodoInput{
		Title:       *req.Title,
		Description: *req.Description,
		State:       req.State,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, newTodoView(todo))
}

func (h *TodoHandler) List(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	filter := app.TodoFilter{Page: page}
	if v, ok := c.GetQuery("title"); ok {
		filter.Title = &v
	}
	if v, ok := c.GetQuery("description"); ok {
		filter.Description = &v
	}
	if v, ok := c.GetQuery("state"); ok {
		state := model.TodoState(v)
		filter.State = &state
	}

	todos, err := h.todoService.List(c.Request.Context(), identity, filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	views := make([]todoView, 0, len(todos))
	for i := range todos {
		views = append(views, newTodoView(&todos[i]))
	}
	response.OK(c, gin.H{"todos": views})
}

func (h *TodoHandler) Get(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	todo, err := h.todoService.Get(c.Request.Context(), identity, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, newTodoView(todo))
}

func (h *TodoHandler) Update(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PatchTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "invalid request payload")
		return
	}

	todo, err := h.todoService.Update(c.Request.Context(), identity, id, app.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, newTodoView(todo))
}

func (h *TodoHandler) Delete(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.todoService.Delete(c.Request.Context(), identity, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Message(c, "Task has been deleted successfully")
}

func newTodoView(t *model.Todo) todoView {
	return todoView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		State:       t.State,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
