package api

import (
	"net/http"

	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) addBook(c *gin.Context) {
	var req service.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please fill all required fields!")
		return
	}

	book, err := h.catalog.AddBook(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to add book")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Book added successfully", "book": book})
}

func (h *Handler) listBooks(c *gin.Context) {
	var req service.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.catalog.ListBooks(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to fetch books")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := idParam(c, "id", "book ID")
	if !ok {
		return
	}

	book, err := h.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

func (h *Handler) updateBook(c *gin.Context) {
	id, ok := idParam(c, "id", "book ID")
	if !ok {
		return
	}

	var req service.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	book, err := h.catalog.UpdateBook(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully", "book": book})
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := idParam(c, "id", "book ID")
	if !ok {
		return
	}

	if err := h.catalog.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

type stockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

func (h *Handler) updateStock(c *gin.Context) {
	id, ok := idParam(c, "id", "book ID")
	if !ok {
		return
	}

	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, service.ErrInvalidStock.Error())
		return
	}

	book, err := h.catalog.SetStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		respondError(c, err, "Failed to update stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated successfully", "book": book})
}
