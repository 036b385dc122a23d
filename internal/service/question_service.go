package service

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/repository"
)

// QuestionService runs the Q&A workflow: questions, reply threads and
// marking a thread as the solution.
type QuestionService struct {
	core
}

func NewQuestionService(d Deps) *QuestionService {
	return &QuestionService{core: newCore(d, "questions")}
}

type QuestionInput struct {
	Title   string
	Content string
}

func (in QuestionInput) validate() (QuestionInput, error) {
	title, err := requireText(in.Title, "Title")
	if err != nil {
		return in, err
	}
	content, err := requireText(in.Content, "Content")
	if err != nil {
		return in, err
	}
	if len(content) > maxContentLen {
		return in, models.NewValidationError("Content too long (max 50000 characters)")
	}
	return QuestionInput{Title: title, Content: content}, nil
}

func (s *QuestionService) Ask(ctx context.Context, author *models.User, in QuestionInput) (*models.Question, error) {
	if err := requireUser(author); err != nil {
		return nil, err
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	q := &models.Question{UserID: author.ID, Title: in.Title, Content: in.Content, Status: models.QuestionOpen}
	if err := s.repos.Questions.Create(ctx, q); err != nil {
		return nil, err
	}
	q.User = author
	return q, nil
}

// List returns questions newest first. hideWarnings drops questions under a
// moderation warning status.
func (s *QuestionService) List(ctx context.Context, hideWarnings bool) ([]models.Question, error) {
	return s.repos.Questions.List(ctx, hideWarnings)
}

func (s *QuestionService) ListByUser(ctx context.Context, userID uint) ([]models.Question, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Questions.ListByUser(ctx, userID)
}

// Get returns the question with its author and its threads.
func (s *QuestionService) Get(ctx context.Context, id uint) (*models.Question, error) {
	return s.repos.Questions.GetDetailed(ctx, id)
}

// Edit updates a question. An OPEN or UPDATED question becomes UPDATED.
func (s *QuestionService) Edit(ctx context.Context, caller *models.User, id uint, in QuestionInput) (*models.Question, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	q, err := s.repos.Questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(caller, q.UserID, "You can only edit your own questions"); err != nil {
		return nil, err
	}
	if err := s.repos.Questions.Update(ctx, id, in.Title, in.Content, q.Status.AfterEdit()); err != nil {
		return nil, err
	}
	return s.repos.Questions.GetDetailed(ctx, id)
}

func (s *QuestionService) Delete(ctx context.Context, caller *models.User, id uint) error {
	q, err := s.repos.Questions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAuthorOrAdmin(caller, q.UserID, "You can only delete your own questions"); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		return tx.Questions.Delete(ctx, id)
	})
}

// PostThread replies to a question.
func (s *QuestionService) PostThread(ctx context.Context, author *models.User, questionID uint, content string) (*models.Thread, error) {
	if err := requireUser(author); err != nil {
		return nil, err
	}
	content, err := validComment(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	t := &models.Thread{QuestionID: questionID, UserID: author.ID, Content: content, Status: models.ThreadOpen}
	if err := s.repos.Questions.CreateThread(ctx, t); err != nil {
		return nil, err
	}
	t.User = author
	return t, nil
}

// GetThread returns a thread with its author and question.
func (s *QuestionService) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	return s.repos.Questions.GetThreadDetailed(ctx, id)
}

func (s *QuestionService) EditThread(ctx context.Context, caller *models.User, id uint, content string) (*models.Thread, error) {
	content, err := validComment(content)
	if err != nil {
		return nil, err
	}
	t, err := s.repos.Questions.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(caller, t.UserID, "You can only edit your own threads"); err != nil {
		return nil, err
	}
	if err := s.repos.Questions.UpdateThreadContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.repos.Questions.GetThreadDetailed(ctx, id)
}

func (s *QuestionService) DeleteThread(ctx context.Context, caller *models.User, id uint) error {
	t, err := s.repos.Questions.GetThread(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAuthorOrAdmin(caller, t.UserID, "You can only delete your own threads"); err != nil {
		return err
	}
	return s.repos.Questions.DeleteThread(ctx, id)
}

// MarkSolved marks a thread as the solution of its question and the question
// as ANSWERED. A solved question cannot be solved again.
func (s *QuestionService) MarkSolved(ctx context.Context, caller *models.User, threadID uint) (thread *models.Thread, err error) {
	ctx, done := traced(ctx, "questions", "MarkSolved")
	defer done(&err)

	if err := requireUser(caller); err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		t, err := tx.Questions.GetThread(ctx, threadID)
		if err != nil {
			return err
		}
		q, err := tx.Questions.GetByID(ctx, t.QuestionID)
		if err != nil {
			return err
		}
		if err := requireAuthorOrAdmin(caller, q.UserID, "Only the author of the question can mark a solution"); err != nil {
			return err
		}
		if err := models.CanMarkSolved(*t, *q); err != nil {
			return err
		}
		if err := tx.Questions.UpdateThreadStatus(ctx, t.ID, models.ThreadSolution); err != nil {
			return err
		}
		return tx.Questions.UpdateStatus(ctx, q.ID, models.QuestionAnswered, q.Comment)
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Questions.GetThreadDetailed(ctx, threadID)
}
