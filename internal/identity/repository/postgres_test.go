package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetCredentialByEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(getCredentialByEmail)).
		WithArgs("jean@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "metadata_role"}).
			AddRow("u1", "jean@example.com", "$2a$hash", "etudiant"))

	c, err := repo.GetCredentialByEmail(context.Background(), " Jean@Example.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "etudiant", c.MetadataRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCredentialByEmail_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(getCredentialByEmail)).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "metadata_role"}))

	c, err := repo.GetCredentialByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestGetCredentialByID_DBError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(getCredentialByID)).
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))

	c, err := repo.GetCredentialByID(context.Background(), "u1")
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestGetRole(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(getRole)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("entreprise"))
	mock.ExpectQuery(regexp.QuoteMeta(getRole)).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(getRole)).
		WithArgs("u3").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, found, err := repo.GetRole(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "entreprise", role)

	_, found, err = repo.GetRole(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, found, "NULL role")

	_, found, err = repo.GetRole(context.Background(), "u3")
	require.NoError(t, err)
	assert.False(t, found, "missing row")
	assert.NoError(t, mock.ExpectationsWereMet())
}
