package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	reviewsapp "rentbook/internal/app/handlers/reviews"
	"rentbook/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createReviewRequest struct {
	ReviewID string `json:"review_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := reviewsapp.CreateReviewCommand{
		ReviewID:  req.ReviewID,
		BookingID: c.Param("id"),
		Rating:    req.Rating,
		Comment:   req.Comment,
		Username:  user.Username,
	}
	result, err := commands.Dispatch[reviewsapp.CreateReviewCommand, dto.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	result, err := queries.Ask[reviewsapp.GetReviewQuery, dto.Review](c.Request.Context(), h.Queries,
		reviewsapp.GetReviewQuery{BookingID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *ReviewHandler) Update(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req updateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := reviewsapp.UpdateReviewCommand{ReviewID: c.Param("id"), Rating: req.Rating, Comment: req.Comment, Username: user.Username}
	result, err := commands.Dispatch[reviewsapp.UpdateReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) UpdateRating(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if !bindJSON(c, &req) {
		return
	}
	cmd := reviewsapp.UpdateReviewRatingCommand{ReviewID: c.Param("id"), Rating: req.Rating, Username: user.Username}
	result, err := commands.Dispatch[reviewsapp.UpdateReviewRatingCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) UpdateComment(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if !bindJSON(c, &req) {
		return
	}
	cmd := reviewsapp.UpdateReviewCommentCommand{ReviewID: c.Param("id"), Comment: req.Comment, Username: user.Username}
	result, err := commands.Dispatch[reviewsapp.UpdateReviewCommentCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := reviewsapp.DeleteReviewCommand{ReviewID: c.Param("id"), Username: user.Username}
	result, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, dto.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) IsOwner(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := queries.Ask[reviewsapp.IsReviewOwnerQuery, dto.Ownership](c.Request.Context(), h.Queries,
		reviewsapp.IsReviewOwnerQuery{ReviewID: c.Param("id"), Username: user.Username})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
