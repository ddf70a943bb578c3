package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytime501/saramin/internal/model"
)

var jobColumns = []string{
	"id", "title", "company_id", "company", "location", "experience", "education",
	"employment_type", "deadline", "tech_stack", "salary", "description",
	"link", "views", "created_at", "updated_at",
}

func TestJobSearchQueryWhere(t *testing.T) {
	cond, args := JobSearchQuery{
		Location:  "서울",
		TechStack: "Go",
		Keyword:   "백엔드",
	}.where()

	assert.Equal(t, "j.location = ? AND j.tech_stack LIKE ? AND (j.title LIKE ? OR j.description LIKE ?)", cond)
	assert.Equal(t, []any{"서울", "%Go%", "%백엔드%", "%백엔드%"}, args)

	_, args = JobSearchQuery{TechStack: "C_", Company: "100%", Keyword: `a\b`}.where()
	assert.Equal(t, []any{`%C\_%`, `%100\%%`, `%a\\b%`, `%a\\b%`}, args)

	cond, args = JobSearchQuery{}.where()
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)
}

func TestJobSearchOrderBy(t *testing.T) {
	tests := []struct {
		q    JobSearchQuery
		want string
	}{
		{JobSearchQuery{}, "j.created_at DESC, j.id DESC"},
		{JobSearchQuery{SortBy: "views", SortOrder: "asc"}, "j.views ASC, j.id ASC"},
		{JobSearchQuery{SortBy: "company", SortOrder: "DESC"}, "c.name DESC, j.id DESC"},
		{JobSearchQuery{SortBy: "id; DROP TABLE jobs", SortOrder: "sideways"}, "j.created_at DESC, j.id DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.orderBy())
	}
	assert.True(t, IsJobSortField("employmentType"))
	assert.False(t, IsJobSortField("password"))
}

func TestJobSearchPaginates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepo(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)(.|\n)+WHERE j.location = \\?").
		WithArgs("서울").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(45))
	mock.ExpectQuery("ORDER BY j.created_at DESC, j.id DESC(.|\n)+LIMIT \\? OFFSET \\?").
		WithArgs("서울", model.PageSize, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "name", "deadline"}).
			AddRow(1, "Backend", "", "2024-06-30"))

	out, total, err := repo.Search(context.Background(), JobSearchQuery{Location: "서울", Page: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(45), total)
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Company)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRelatedWithoutSignalsSkipsQuery(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepo(db)

	out, err := repo.Related(context.Background(), &model.Job{ID: 1}, RelatedLimit)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeContainsEscapesWildcards(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Go", "%Go%"},
		{"C_", `%C\_%`},
		{"50%", `%50\%%`},
		{`C:\dev`, `%C:\\dev%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likeContains(tt.in), tt.in)
	}
}

func TestJobRelatedMatchesTechLiterally(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (j.tech_stack LIKE ? OR j.tech_stack LIKE ?) AND j.id <> ?")).
		WithArgs(`%C\_%`, "%Go%", uint64(1), RelatedLimit).
		WillReturnRows(sqlmock.NewRows(jobColumns))

	out, err := repo.Related(context.Background(), &model.Job{ID: 1, TechStack: "C_, Go"}, RelatedLimit)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdateResetsViews(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies (name) VALUES (?)")).
		WithArgs("Acme").
		WillReturnResult(sqlmock.NewResult(4, 0))
	mock.ExpectExec(regexp.QuoteMeta("description = ?, link = ?, views = 0")).
		WithArgs("Backend", uint64(4), "서울", "신입", "학력무관", "정규직", "2024-12-31",
			"Go, MySQL", "4000", "Build services", "https://example.com/1", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	j := &model.Job{
		ID: 9, Title: "Backend", Company: "Acme", Location: "서울", Experience: "신입",
		Education: "학력무관", EmploymentType: "정규직", Deadline: "2024-12-31",
		TechStack: "Go, MySQL", Salary: "4000", Description: "Build services",
		Link: "https://example.com/1", Views: 120,
	}
	require.NoError(t, repo.Update(context.Background(), j))
	assert.Equal(t, uint64(0), j.Views)
	require.NotNil(t, j.CompanyID)
	assert.Equal(t, uint64(4), *j.CompanyID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdateZeroRowsChecksExistence(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{"unchanged row", sqlmock.NewRows([]string{"1"}).AddRow(1), nil},
		{"missing row", sqlmock.NewRows([]string{"1"}), ErrJobNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewJobRepo(db)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies (name) VALUES (?)")).
				WillReturnResult(sqlmock.NewResult(4, 0))
			mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET")).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM jobs WHERE id = ?")).
				WithArgs(uint64(9)).
				WillReturnRows(tt.rows)
			if tt.wantErr == nil {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := repo.Update(context.Background(), &model.Job{ID: 9, Title: "Backend", Company: "Acme"})
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestJobUpsertByLinkReportsOutcome(t *testing.T) {
	tests := []struct {
		affected int64
		want     UpsertResult
	}{
		{1, UpsertInserted},
		{2, UpsertUpdated},
		{0, UpsertUnchanged},
	}
	for _, tt := range tests {
		db, mock := newMock(t)
		repo := NewJobRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies (name) VALUES (?)")).
			WithArgs("Acme").
			WillReturnResult(sqlmock.NewResult(4, 1))
		mock.ExpectExec("INSERT INTO jobs(.|\n)+ON DUPLICATE KEY UPDATE").
			WillReturnResult(sqlmock.NewResult(9, tt.affected))

		got, err := repo.UpsertByLink(context.Background(), &model.Job{
			Title: "Backend", Company: " Acme ", Link: "https://example.com/1",
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		require.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestJobDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id = ?")).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 42), ErrJobNotFound)
}

func TestBookmarkToggle(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookmarkRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookmarks")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookmarks")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookmarks")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	on, err := repo.Toggle(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = repo.Toggle(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.False(t, on)
	require.NoError(t, mock.ExpectationsWereMet())
}
