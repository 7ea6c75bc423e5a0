package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Request DTO for creating or updating a note.
type noteContentRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// @Summary      List notes
// @Description  Public snapshot of all notes in insertion order. No authentication.
// @Tags         notes
// @Produce      json
// @Success      200  {array}  models.Note
// @Failure      500  {object}  map[string]string
// @Router       /notes [get]
func (h *Handler) listNotes(c *gin.Context) {
	notes, err := h.services.Notes.List(c.Request.Context())
	if err != nil {
		h.jsonError(c, "notes_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// @Summary      Create note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Note
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /notes [post]
// @Security     BearerAuth
func (h *Handler) createNote(c *gin.Context) {
	var req noteContentRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	n, err := h.services.Notes.Create(c.Request.Context(), c.GetString(userIDKey), req.Content)
	if err != nil {
		h.jsonError(c, "note_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// @Summary      Update note
// @Description  Only the note's author may update it. Content is replaced in place.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Note id"
// @Success      200  {object}  models.Note
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /notes/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateNote(c *gin.Context) {
	var req noteContentRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	id := c.Param("id")
	n, err := h.services.Notes.Update(c.Request.Context(), id, c.GetString(userIDKey), req.Content)
	if err != nil {
		h.jsonError(c, "note_update_failed", err, "note", id)
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary      Delete note
// @Description  Only the note's author may delete it. Returns the removed note.
// @Tags         notes
// @Produce      json
// @Param        id  path  string  true  "Note id"
// @Success      200  {object}  models.Note
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /notes/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteNote(c *gin.Context) {
	id := c.Param("id")
	n, err := h.services.Notes.Delete(c.Request.Context(), id, c.GetString(userIDKey))
	if err != nil {
		h.jsonError(c, "note_delete_failed", err, "note", id)
		return
	}
	c.JSON(http.StatusOK, n)
}
