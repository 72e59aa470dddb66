package server

import (
	"github.com/ChakCage/Borlas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateContentRequest struct {
	Title   *string `json:"title"`
	Content string  `json:"content"`
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Actor:   currentIdentity(c),
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get an active post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Blank content soft-deletes the post; otherwise the content is replaced and edited_at is set.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{outcome=string,post=models.Post}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	var req updateContentRequest
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	post, outcome, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Actor:   currentIdentity(c),
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"outcome": outcome, "post": post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Soft-delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{outcome=string,post=models.Post}
// @Failure 403 {object} ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	post, outcome, err := s.postService.DeletePost(c.UserContext(), currentIdentity(c), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"outcome": outcome, "post": post})
}

// ListActivePosts handles GET /api/posts/active
// @Summary List active posts
// @Tags posts
// @Produce json
// @Param owner query string false "Owner username"
// @Param order query string false "asc or desc (default desc)"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/active [get]
func (s *Server) ListActivePosts(c *fiber.Ctx) error {
	q, err := s.parseListQuery(c)
	if err != nil {
		return RespondWithError(c, err)
	}
	posts, err := s.postService.ListActive(c.UserContext(), q)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// ListDeletedPosts handles GET /api/posts/deleted
// @Summary List soft-deleted posts
// @Description Owners see their own deleted posts; admins may list any owner.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Failure 403 {object} ErrorResponse
// @Router /posts/deleted [get]
func (s *Server) ListDeletedPosts(c *fiber.Ctx) error {
	q, err := s.parseListQuery(c)
	if err != nil {
		return RespondWithError(c, err)
	}
	if c.Query("owner") == "" {
		q.Scope = ownScope(c)
	}
	posts, err := s.postService.ListDeleted(c.UserContext(), currentIdentity(c), q)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPostComments handles GET /api/posts/:id/comments
// @Summary List the active comments of a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param order query string false "asc or desc (default asc)"
// @Success 200 {array} models.Comment
// @Router /posts/{id}/comments [get]
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	q, err := s.parseListQuery(c)
	if err != nil {
		return RespondWithError(c, err)
	}
	if c.Query("order") == "" {
		// Threads read oldest first.
		q.Order = ""
	}

	comments, err := s.commentService.ListByPost(c.UserContext(), id, q)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{content=string,parent_id=int} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		Actor:    currentIdentity(c),
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
