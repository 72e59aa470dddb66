package server

import (
	"github.com/ChakCage/Borlas/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id. Blank content soft-deletes.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	var req updateContentRequest
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	comment, outcome, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		Actor:     currentIdentity(c),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"outcome": outcome, "comment": comment})
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	comment, outcome, err := s.commentService.DeleteComment(c.UserContext(), currentIdentity(c), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"outcome": outcome, "comment": comment})
}

// ListActiveComments handles GET /api/comments/active
func (s *Server) ListActiveComments(c *fiber.Ctx) error {
	q, err := s.parseListQuery(c)
	if err != nil {
		return RespondWithError(c, err)
	}
	comments, err := s.commentService.ListActive(c.UserContext(), q)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(comments)
}

// ListDeletedComments handles GET /api/comments/deleted
func (s *Server) ListDeletedComments(c *fiber.Ctx) error {
	q, err := s.parseListQuery(c)
	if err != nil {
		return RespondWithError(c, err)
	}
	if c.Query("owner") == "" {
		q.Scope = ownScope(c)
	}
	comments, err := s.commentService.ListDeleted(c.UserContext(), currentIdentity(c), q)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(comments)
}
