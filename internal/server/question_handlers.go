package server

import (
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type questionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r questionRequest) input() service.QuestionInput {
	return service.QuestionInput{Title: r.Title, Content: r.Content}
}

// GetQuestions handles GET /api/questions. Questions under moderation are
// hidden unless filterWarning=false.
// @Summary List questions
// @Tags questions
// @Produce json
// @Param filterWarning query bool false "Hide moderated questions" default(true)
// @Success 200 {array} models.Question
// @Router /questions [get]
func (s *Server) GetQuestions(c *fiber.Ctx) error {
	hide := c.QueryBool("filterWarning", true)
	questions, err := s.questions.List(c.UserContext(), hide)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(questions)
}

// GetUserQuestions handles GET /api/questions/user/:userId
func (s *Server) GetUserQuestions(c *fiber.Ctx) error {
	userID, err := s.userIDParam(c)
	if err != nil {
		return nil
	}
	questions, err := s.questions.ListByUser(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(questions)
}

// GetQuestion handles GET /api/questions/:id
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	question, err := s.questions.Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(question)
}

// AskQuestion handles POST /api/questions/ask
func (s *Server) AskQuestion(c *fiber.Ctx) error {
	var req questionRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	question, err := s.questions.Ask(c.UserContext(), middleware.CurrentUser(c), req.input())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// EditQuestion handles PUT /api/questions/:id
func (s *Server) EditQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req questionRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	question, err := s.questions.Edit(c.UserContext(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(question)
}

// DeleteQuestion handles DELETE /api/questions/:id
func (s *Server) DeleteQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.questions.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Question deleted successfully"})
}

// UpdateQuestionStatus handles PUT /api/questions/:id/status
func (s *Server) UpdateQuestionStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	question, err := s.moderation.UpdateQuestionStatus(c.UserContext(), middleware.CurrentUser(c), id, req.Status, req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(question)
}

// PostThread handles POST /api/questions/:id/post-thread
func (s *Server) PostThread(c *fiber.Ctx) error {
	questionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	thread, err := s.questions.PostThread(c.UserContext(), middleware.CurrentUser(c), questionID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(thread)
}

// GetThread handles GET /api/questions/threads/:id
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	thread, err := s.questions.GetThread(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// EditThread handles PUT /api/questions/edit-thread/:id
func (s *Server) EditThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	thread, err := s.questions.EditThread(c.UserContext(), middleware.CurrentUser(c), id, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// DeleteThread handles DELETE /api/questions/delete-thread/:id
func (s *Server) DeleteThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.questions.DeleteThread(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thread deleted successfully"})
}

// MarkThreadSolved handles POST /api/questions/threads/:id/solve
// @Summary Mark a thread as the solution of its question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} models.Thread
// @Failure 409 {object} models.ErrorResponse
// @Router /questions/threads/{id}/solve [post]
func (s *Server) MarkThreadSolved(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	thread, err := s.questions.MarkSolved(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}
