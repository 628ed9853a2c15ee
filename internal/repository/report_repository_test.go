package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacultySummary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"faculty_id", "faculty_name", "evaluation_count", "average_rating", "min_rating", "max_rating"}).
		AddRow("f1", "Dr. Reyes", 12, 4.25, 3.0, 5.0)
	mock.ExpectQuery("SELECT f.id AS faculty_id").
		WithArgs("f1").
		WillReturnRows(rows)

	summary, err := repo.FacultySummary(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Count)
	require.NotNil(t, summary.AverageRating)
	assert.Equal(t, 4.25, *summary.AverageRating)
	assert.True(t, summary.HasData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultySummaryNoEvaluations(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"faculty_id", "faculty_name", "evaluation_count", "average_rating", "min_rating", "max_rating"}).
		AddRow("f1", "Dr. Reyes", 0, nil, nil, nil)
	mock.ExpectQuery("SELECT f.id AS faculty_id").
		WithArgs("f1").
		WillReturnRows(rows)

	summary, err := repo.FacultySummary(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.Nil(t, summary.AverageRating)
	assert.False(t, summary.HasData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriterionSummariesKeepsZeroResponseCriteria(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	// The responses join is scoped to the target faculty before grouping,
	// so criteria rated only for other faculty still come back as no-data.
	rows := sqlmock.NewRows([]string{"category", "criterion", "average_rating", "response_count"}).
		AddRow("Teaching", "Clarity of instruction", 4.5, 6).
		AddRow("Teaching", "Mastery of subject", nil, 0).
		AddRow("Conduct", "Punctuality", nil, 0)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.faculty_id = $1 AND e.status = 'SUBMITTED'")).
		WithArgs("f1").
		WillReturnRows(rows)

	summaries, err := repo.CriterionSummaries(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.True(t, summaries[0].HasData)
	require.NotNil(t, summaries[0].AverageRating)
	assert.Equal(t, 4.5, *summaries[0].AverageRating)
	assert.False(t, summaries[1].HasData)
	assert.Nil(t, summaries[1].AverageRating)
	assert.Equal(t, 0, summaries[2].ResponseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"student_count", "faculty_count", "new_signups", "evaluation_count"}).
		AddRow(120, 8, 5, 340)
	mock.ExpectQuery("SELECT").
		WithArgs("School of Technology").
		WillReturnRows(rows)

	students, faculty, signups, evaluations, err := repo.DepartmentCounts(context.Background(), "School of Technology")
	require.NoError(t, err)
	assert.Equal(t, 120, students)
	assert.Equal(t, 8, faculty)
	assert.Equal(t, 5, signups)
	assert.Equal(t, 340, evaluations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodSummaries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"semester", "academic_year", "average_rating", "evaluation_count"}).
		AddRow("2nd", "2025-2026", 4.1, 20).
		AddRow("1st", "2025-2026", 3.9, 18)
	mock.ExpectQuery("SELECT e.semester, e.academic_year").
		WithArgs("f1").
		WillReturnRows(rows)

	summaries, err := repo.PeriodSummaries(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2nd", summaries[0].Semester)
	assert.True(t, summaries[0].HasData)
	assert.NoError(t, mock.ExpectationsWereMet())
}
