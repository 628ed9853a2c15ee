package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

func TestExistsStudentSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectQuery("SELECT 1 FROM evaluations").
		WithArgs("s1", "f1", "sub1", "1st", "2025-2026").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsStudentSubmission(context.Background(), "s1", "f1", "sub1", "1st", "2025-2026")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsStudentSubmissionNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectQuery("SELECT 1 FROM evaluations").
		WithArgs("s1", "f1", "sub1", "1st", "2025-2026").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	exists, err := repo.ExistsStudentSubmission(context.Background(), "s1", "f1", "sub1", "1st", "2025-2026")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithResponsesDerivesOverallRating(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO evaluations").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO evaluation_responses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO evaluation_responses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE evaluations SET overall_rating = $2 WHERE id = $1")).
		WithArgs(sqlmock.AnyArg(), 4.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	studentID := "s1"
	evaluation := &models.Evaluation{
		FacultyID:    "f1",
		StudentID:    &studentID,
		SubjectID:    "sub1",
		Semester:     "1st",
		AcademicYear: "2025-2026",
		IsAnonymous:  true,
	}
	responses := []models.EvaluationResponse{
		{CriterionID: "c1", Rating: 5},
		{CriterionID: "c2", Rating: 3},
	}

	err := repo.CreateWithResponses(context.Background(), evaluation, responses)
	require.NoError(t, err)
	assert.NotEmpty(t, evaluation.ID)
	assert.Equal(t, models.EvaluationStatusSubmitted, evaluation.Status)
	require.NotNil(t, evaluation.OverallRating)
	assert.Equal(t, 4.0, *evaluation.OverallRating)
	assert.Equal(t, evaluation.ID, responses[0].EvaluationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithResponsesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	studentID := "s1"
	evaluation := &models.Evaluation{
		FacultyID:    "f1",
		StudentID:    &studentID,
		SubjectID:    "sub1",
		Semester:     "1st",
		AcademicYear: "2025-2026",
	}

	err := repo.CreateWithResponses(context.Background(), evaluation, nil)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.NoError(t, mock.ExpectationsWereMet())
}
