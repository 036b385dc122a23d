package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository covers questions and their reply threads.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetDetailed(ctx context.Context, id uint) (*models.Question, error)
	// List returns questions newest first; hideWarnings drops moderation warning states.
	List(ctx context.Context, hideWarnings bool) ([]models.Question, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Question, error)
	Update(ctx context.Context, id uint, title, content string, status models.QuestionStatus) error
	UpdateStatus(ctx context.Context, id uint, status models.QuestionStatus, comment string) error
	Delete(ctx context.Context, id uint) error
	// CountSolved counts, per user, questions that are ANSWERED and have a SOLUTION thread.
	CountSolved(ctx context.Context, userIDs []uint) (map[uint]int64, error)

	CreateThread(ctx context.Context, t *models.Thread) error
	GetThread(ctx context.Context, id uint) (*models.Thread, error)
	GetThreadDetailed(ctx context.Context, id uint) (*models.Thread, error)
	UpdateThreadContent(ctx context.Context, id uint, content string) error
	UpdateThreadStatus(ctx context.Context, id uint, status models.ThreadStatus) error
	DeleteThread(ctx context.Context, id uint) error
}

type questionRepository struct {
	base
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{base{db: db}}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(q).Error)
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.read(ctx).First(&q, id).Error; err != nil {
		return nil, lookupErr(err, "Question", id)
	}
	return &q, nil
}

func (r *questionRepository) GetDetailed(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := r.read(ctx).
		Preload("User").
		Preload("Threads", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Threads.User").
		First(&q, id).Error
	if err != nil {
		return nil, lookupErr(err, "Question", id)
	}
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context, hideWarnings bool) ([]models.Question, error) {
	var out []models.Question
	q := r.read(ctx).Preload("User").Preload("Threads")
	if hideWarnings {
		q = q.Where("status NOT IN ?", models.WarningStatuses)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *questionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Question, error) {
	var out []models.Question
	err := r.read(ctx).
		Where("user_id = ?", userID).
		Preload("Threads").
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *questionRepository) Update(ctx context.Context, id uint, title, content string, status models.QuestionStatus) error {
	err := r.write(ctx).Model(&models.Question{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "content": content, "status": status}).Error
	return writeErr(err)
}

func (r *questionRepository) UpdateStatus(ctx context.Context, id uint, status models.QuestionStatus, comment string) error {
	err := r.write(ctx).Model(&models.Question{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "comment": comment}).Error
	return writeErr(err)
}

// Delete removes the question and its threads.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	db := r.write(ctx)
	if err := db.Where("question_id = ?", id).Delete(&models.Thread{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return writeErr(db.Delete(&models.Question{}, id).Error)
}

func (r *questionRepository) CountSolved(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID uint
		Total  int64
	}
	err := r.read(ctx).Model(&models.Question{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ? AND status = ?", userIDs, models.QuestionAnswered).
		Where("EXISTS (SELECT 1 FROM threads t WHERE t.question_id = questions.id AND t.status = ?)", models.ThreadSolution).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.UserID] = row.Total
	}
	return out, nil
}

func (r *questionRepository) CreateThread(ctx context.Context, t *models.Thread) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(t).Error)
}

func (r *questionRepository) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	var t models.Thread
	if err := r.read(ctx).First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "Thread", id)
	}
	return &t, nil
}

func (r *questionRepository) GetThreadDetailed(ctx context.Context, id uint) (*models.Thread, error) {
	var t models.Thread
	if err := r.read(ctx).Preload("User").Preload("Question.User").First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "Thread", id)
	}
	return &t, nil
}

func (r *questionRepository) UpdateThreadContent(ctx context.Context, id uint, content string) error {
	err := r.write(ctx).Model(&models.Thread{}).Where("id = ?", id).Update("content", content).Error
	return writeErr(err)
}

func (r *questionRepository) UpdateThreadStatus(ctx context.Context, id uint, status models.ThreadStatus) error {
	err := r.write(ctx).Model(&models.Thread{}).Where("id = ?", id).Update("status", status).Error
	return writeErr(err)
}

func (r *questionRepository) DeleteThread(ctx context.Context, id uint) error {
	return writeErr(r.write(ctx).Delete(&models.Thread{}, id).Error)
}
