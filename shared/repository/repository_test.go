package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otelMocks "roombook/infras/otel/mocks"
	"roombook/infras/postgres"
	"roombook/shared/dto"
	"roombook/shared/repository"
)

type widget struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Category string `db:"category_name" table:"categories" column:"name"`
}

func (widget) GetJoinQuery() string {
	return "JOIN categories ON categories.id = widgets.category_id"
}

func newRepo(t *testing.T) (repository.Repository[widget], sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.NewRepository[widget]("widget", "widgets", "id", conn, otelMocks.NewOtel()), mock, sqlxDB
}

func byID(id string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "id", Value: id, Operator: dto.FilterOperatorEq, Table: "widgets"},
		},
	}
}

func TestRepository_InsertColumnsSkipJoinedFields(t *testing.T) {
	repo, _, _ := newRepo(t)

	assert.Equal(t, []string{"id", "name"}, repo.InsertColumns)
}

func TestRepository_Insert(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO widgets (id, name) VALUES ($1, $2)")).
		WithArgs("w1", "Lamp").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), widget{ID: "w1", Name: "Lamp"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Exist(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM widgets  WHERE (widgets.id = $1) )")).
			ExpectQuery().
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exist, err := repo.Exist(context.Background(), byID("w1"))

		require.NoError(t, err)
		assert.True(t, exist)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires a filter", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		_, err := repo.Exist(context.Background(), dto.FilterGroup{})

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Get(t *testing.T) {
	t.Run("joined columns are aliased", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta(
			"SELECT widgets.id, widgets.name, categories.name AS category_name FROM widgets JOIN categories ON categories.id = widgets.category_id  WHERE (widgets.id = $1)",
		)).
			ExpectQuery().
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_name"}).AddRow("w1", "Lamp", "Lighting"))

		got, err := repo.Get(context.Background(), byID("w1"))

		require.NoError(t, err)
		assert.Equal(t, widget{ID: "w1", Name: "Lamp", Category: "Lighting"}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is the zero value", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		mock.ExpectPrepare("SELECT").
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_name"}))

		got, err := repo.Get(context.Background(), byID("w404"))

		require.NoError(t, err)
		assert.Empty(t, got.ID)
	})

	t.Run("for update locks the base table", func(t *testing.T) {
		repo, mock, db := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectPrepare(regexp.QuoteMeta("WHERE (widgets.id = $1)  FOR UPDATE OF widgets")).
			ExpectQuery().
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_name"}).AddRow("w1", "Lamp", "Lighting"))
		mock.ExpectCommit()

		tx, err := db.Beginx()
		require.NoError(t, err)

		got, err := repo.GetForUpdateTx(context.Background(), tx, byID("w1"))
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		assert.Equal(t, "w1", got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetAll(t *testing.T) {
	tests := []struct {
		name      string
		params    dto.QueryParams
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "sorted and paginated",
			params:    dto.QueryParams{Page: 2, Limit: 10, SortBy: "name", SortDir: dto.SortDirAsc},
			wantQuery: "WHERE (widgets.id = $1)  ORDER BY widgets.name ASC LIMIT $2 OFFSET $3",
			wantArgs:  []any{"w1", 10, 10},
		},
		{
			name:      "sort by joined alias",
			params:    dto.QueryParams{Limit: 5, SortBy: "category_name", SortDir: dto.SortDirDesc},
			wantQuery: "ORDER BY categories.name DESC LIMIT $2",
			wantArgs:  []any{"w1", 5},
		},
		{
			name:      "unknown sort column is ignored",
			params:    dto.QueryParams{SortBy: "created_at; DROP TABLE widgets", SortDir: dto.SortDirAsc},
			wantQuery: "WHERE (widgets.id = $1)",
			wantArgs:  []any{"w1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, _ := newRepo(t)

			args := make([]driver.Value, len(tt.wantArgs))
			for i, arg := range tt.wantArgs {
				args[i] = arg
			}

			mock.ExpectPrepare(regexp.QuoteMeta(tt.wantQuery)).
				ExpectQuery().
				WithArgs(args...).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_name"}).AddRow("w1", "Lamp", "Lighting"))

			got, err := repo.GetAll(context.Background(), tt.params, byID("w1"))

			require.NoError(t, err)
			assert.Len(t, got, 1)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Count(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT COUNT(widgets.id) FROM widgets JOIN categories")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background(), dto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRepository_Update(t *testing.T) {
	t.Run("columns in stable order", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET category_id = $1, name = $2  WHERE (widgets.id = $3)")).
			WithArgs("c1", "Desk Lamp", "w1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), map[string]any{"name": "Desk Lamp", "category_id": "c1"}, byID("w1"))

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires a filter", func(t *testing.T) {
		repo, _, _ := newRepo(t)

		assert.Error(t, repo.Update(context.Background(), map[string]any{"name": "x"}, dto.FilterGroup{}))
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Run("by ids", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM widgets  WHERE (widgets.id IN ($1, $2) )")).
			WithArgs("w1", "w2").
			WillReturnResult(sqlmock.NewResult(0, 2))

		filter := dto.FilterGroup{
			Operator: dto.FilterGroupOperatorAnd,
			Filters: []any{
				dto.Filter{Field: "id", Value: []string{"w1", "w2"}, Operator: dto.FilterOperatorIn, Table: "widgets"},
			},
		}

		require.NoError(t, repo.Delete(context.Background(), filter))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage error is wrapped", func(t *testing.T) {
		repo, mock, _ := newRepo(t)

		mock.ExpectExec("DELETE FROM widgets").WillReturnError(errors.New("connection reset"))

		err := repo.Delete(context.Background(), byID("w1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete data (widget)")
	})
}
