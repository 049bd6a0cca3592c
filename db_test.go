package easyorm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/easyorm"
	"github.com/TechXTT/easyorm/internal/codec"
	"github.com/TechXTT/easyorm/pkg/dialect"
)

type Users struct {
	ID     int32  `orm:"id"`
	Name   string `orm:"name"`
	Active bool   `orm:"active"`
}

const reapQuery = `SELECT id FROM information_schema\.processlist`

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newMockClient returns a MySQL client over sqlmock with the namespace fixed
// to "shop".
func newMockClient(t *testing.T, reap bool) (*easyorm.Client, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	opts := easyorm.Options{Database: "shop", Logger: discard}
	if !reap {
		opts.ReapThreshold = -1
	}
	return easyorm.NewClient(mockDB, dialect.MySQL{}, opts), mock
}

func expectReap(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(reapQuery).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

// TestCreateTable checks the CREATE TABLE statement built for a record type.
func TestCreateTable(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectExec(regexp.QuoteMeta(
		"CREATE TABLE shop.users (primaryId INT NOT NULL AUTO_INCREMENT, id INT, name TEXT, active TINYINT(1), PRIMARY KEY (primaryId));",
	)).WillReturnResult(sqlmock.NewResult(0, 0))

	outcome, err := easyorm.CreateTable[Users](context.Background(), c, "users")
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateTable_ResolvesDatabase ensures the database name is looked up when no namespace is configured.
func TestCreateTable_ResolvesDatabase(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	c := easyorm.NewClient(mockDB, nil, easyorm.Options{Logger: discard})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DATABASE();")).
		WillReturnRows(sqlmock.NewRows([]string{"DATABASE()"}).AddRow("inventory"))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE inventory.users (")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	outcome, err := easyorm.CreateTable[Users](context.Background(), c, "users")
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)
	assert.Equal(t, "inventory", c.Database())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateTable_AlreadyExists checks that a duplicate table maps to TableAlreadyExists.
func TestCreateTable_AlreadyExists(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectExec(`CREATE TABLE shop\.users`).
		WillReturnError(&mysql.MySQLError{Number: 1050, Message: "Table 'users' already exists"})

	outcome, err := easyorm.CreateTable[Users](context.Background(), c, "users")
	assert.Equal(t, easyorm.TableAlreadyExists, outcome)

	var derr *easyorm.DriverError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "create table", derr.Op)
	assert.Contains(t, derr.Statement, "CREATE TABLE shop.users")
	assert.Equal(t, easyorm.TableAlreadyExists, easyorm.OutcomeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateTable_DriverFailure checks that an unclassified driver error yields Fail.
func TestCreateTable_DriverFailure(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("connection reset"))

	outcome, err := easyorm.CreateTable[Users](context.Background(), c, "users")
	assert.Equal(t, easyorm.Fail, outcome)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSave_BindsParameters verifies field values are bound in declaration order.
func TestSave_BindsParameters(t *testing.T) {
	c, mock := newMockClient(t, true)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shop.users (id,name,active) VALUES (?,?,?);")).
		WithArgs(int64(7), "abc", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectReap(mock)

	outcome, err := easyorm.Save(context.Background(), c, "users", Users{ID: 7, Name: "abc", Active: true})
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSave_ValuesAreNeverInterpolated ensures hostile strings travel as parameters only.
func TestSave_ValuesAreNeverInterpolated(t *testing.T) {
	c, mock := newMockClient(t, false)
	evil := "x'); DROP TABLE users; --"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shop.users (id,name,active) VALUES (?,?,?);")).
		WithArgs(int64(1), evil, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	outcome, err := easyorm.Save(context.Background(), c, "users", &Users{ID: 1, Name: evil})
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSave_ReaperFailureKeepsOutcome checks that a failing reaper leaves the save outcome alone.
func TestSave_ReaperFailureKeepsOutcome(t *testing.T) {
	ctx := context.Background()

	c, mock := newMockClient(t, true)
	mock.ExpectExec(`INSERT INTO shop\.users`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(reapQuery).WillReturnError(errors.New("access denied"))

	outcome, err := easyorm.Save(ctx, c, "users", Users{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())

	c, mock = newMockClient(t, true)
	mock.ExpectExec(`INSERT INTO shop\.users`).
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'shop.users' doesn't exist"})
	mock.ExpectQuery(reapQuery).WillReturnError(errors.New("access denied"))

	outcome, err = easyorm.Save(ctx, c, "users", Users{ID: 1})
	assert.Equal(t, easyorm.TableNotFound, outcome)
	var derr *easyorm.DriverError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "save", derr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type stamped struct {
	Name string
	Slug string
}

func (s *stamped) BeforeSave(context.Context) error {
	if s.Name == "" {
		return errors.New("name required")
	}
	s.Slug = "slug-" + s.Name
	return nil
}

// TestSave_BeforeSaveHook verifies the BeforeSave hook can modify or abort a save.
func TestSave_BeforeSaveHook(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectExec(`INSERT INTO shop\.stamped \(Name,Slug\)`).
		WithArgs("a", "slug-a").
		WillReturnResult(sqlmock.NewResult(1, 1))

	outcome, err := easyorm.Save(context.Background(), c, "stamped", stamped{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)

	outcome, err = easyorm.Save(context.Background(), c, "stamped", stamped{})
	assert.Equal(t, easyorm.Fail, outcome)
	assert.ErrorContains(t, err, "name required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRetrieve_Hydrates checks that text and integer driver values hydrate records.
func TestRetrieve_Hydrates(t *testing.T) {
	c, mock := newMockClient(t, true)
	rows := sqlmock.NewRows([]string{"primaryId", "id", "name", "active"}).
		AddRow(int64(1), []byte("7"), []byte("abc"), []byte("1")).
		AddRow(int64(2), int64(8), "def", int64(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM shop.users LIMIT 0,10;")).WillReturnRows(rows)
	expectReap(mock)

	users, err := easyorm.Retrieve[Users](context.Background(), c, "users", 0, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []Users{
		{ID: 7, Name: "abc", Active: true},
		{ID: 8, Name: "def", Active: false},
	}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRetrieve_Pointers checks retrieval into pointer records with differently cased columns.
func TestRetrieve_Pointers(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectQuery(`SELECT \* FROM shop\.users LIMIT 5,1;`).
		WillReturnRows(sqlmock.NewRows([]string{"primaryId", "ID", "NAME", "Active"}).AddRow(6, 3, "x", true))

	users, err := easyorm.Retrieve[*Users](context.Background(), c, "users", 5, 1, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, &Users{ID: 3, Name: "x", Active: true}, users[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRetrieve_EmptyResult ensures an empty page is an empty, non-nil slice.
func TestRetrieve_EmptyResult(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectQuery(`SELECT \* FROM shop\.users`).
		WillReturnRows(sqlmock.NewRows([]string{"primaryId", "id", "name", "active"}))

	users, err := easyorm.Retrieve[Users](context.Background(), c, "users", 100, 10, nil)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

// TestRetrieve_DriverErrorKeepsPartialResult checks that rows read before a failure are returned with the error.
func TestRetrieve_DriverErrorKeepsPartialResult(t *testing.T) {
	c, mock := newMockClient(t, true)
	rows := sqlmock.NewRows([]string{"primaryId", "id", "name", "active"}).
		AddRow(1, 1, "first", true).
		AddRow(2, 2, "second", true).
		RowError(1, errors.New("lost connection"))
	mock.ExpectQuery(`SELECT \* FROM shop\.users`).WillReturnRows(rows)
	expectReap(mock)

	users, err := easyorm.Retrieve[Users](context.Background(), c, "users", 0, 10, nil)
	var derr *easyorm.DriverError
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.Equal(t, "retrieve", derr.Op)
	assert.Equal(t, []Users{{ID: 1, Name: "first", Active: true}}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRetrieve_MissingTable checks that a missing table maps to TableNotFound.
func TestRetrieve_MissingTable(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectQuery(`SELECT \* FROM shop\.ghosts`).
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'shop.ghosts' doesn't exist"})

	users, err := easyorm.Retrieve[Users](context.Background(), c, "ghosts", 0, 10, nil)
	assert.Empty(t, users)
	assert.Equal(t, easyorm.TableNotFound, easyorm.OutcomeOf(err))
}

// TestRetrieve_Filter verifies a filter becomes a bound WHERE clause.
func TestRetrieve_Filter(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM shop.users WHERE name = ? LIMIT 0,10;")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"primaryId", "id", "name", "active"}).AddRow(1, 7, "abc", 1))

	users, err := easyorm.Retrieve[Users](context.Background(), c, "users", 0, 10,
		&easyorm.Filter{Field: "Name", Criterion: "abc"})
	require.NoError(t, err)
	assert.Equal(t, []Users{{ID: 7, Name: "abc", Active: true}}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRetrieve_FilterTypeMismatch checks criterion type and field name validation.
func TestRetrieve_FilterTypeMismatch(t *testing.T) {
	c, mock := newMockClient(t, false)

	_, err := easyorm.Retrieve[Users](context.Background(), c, "users", 0, 10,
		&easyorm.Filter{Field: "name", Criterion: 12})
	require.ErrorIs(t, err, easyorm.ErrCriteriaDataType)
	assert.Equal(t, easyorm.CriteriaDataTypeError, easyorm.OutcomeOf(err))

	_, err = easyorm.Retrieve[Users](context.Background(), c, "users", 0, 10,
		&easyorm.Filter{Field: "nope", Criterion: 12})
	var aerr *easyorm.ArgumentError
	require.True(t, errors.As(err, &aerr))

	assert.NoError(t, mock.ExpectationsWereMet())
}

type withBlob struct {
	Name  string
	Attrs map[string]string
}

// TestRetrieve_CorruptOpaque checks that an undecodable column reports its field.
func TestRetrieve_CorruptOpaque(t *testing.T) {
	c, mock := newMockClient(t, false)
	good, err := codec.EncodeOpaque(map[string]string{"k": "v"})
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"primaryId", "Name", "Attrs"}).
		AddRow(1, "ok", good).
		AddRow(2, "bad", []byte{0x01, 0xc1})
	mock.ExpectQuery(`SELECT \* FROM shop\.blobs`).WillReturnRows(rows)

	got, err := easyorm.Retrieve[withBlob](context.Background(), c, "blobs", 0, 10, nil)
	var derr *easyorm.DeserializationError
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.Equal(t, "Attrs", derr.Field)
	assert.Equal(t, []withBlob{{Name: "ok", Attrs: map[string]string{"k": "v"}}}, got)
}

// TestKillSessions verifies long-running sessions are selected and killed.
func TestKillSessions(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectQuery(reapQuery).
		WithArgs(int64(60)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`^KILL 11;$`).WillReturnResult(sqlmock.NewResult(0, 0))

	outcome, err := c.KillSessions(context.Background(), 60e9)
	require.NoError(t, err)
	assert.Equal(t, easyorm.Success, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestKillSessions_Failure checks that a failing session query yields Fail.
func TestKillSessions_Failure(t *testing.T) {
	c, mock := newMockClient(t, false)
	mock.ExpectQuery(reapQuery).WillReturnError(errors.New("denied"))

	outcome, err := c.KillSessions(context.Background(), 60e9)
	assert.Equal(t, easyorm.Fail, outcome)
	assert.Error(t, err)
}

// TestConnectionUndefined ensures every operation rejects a missing connection.
func TestConnectionUndefined(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*easyorm.Client{
		"nil client": nil,
		"nil db":     easyorm.NewClient(nil, dialect.MySQL{}, easyorm.Options{}),
	} {
		t.Run(name, func(t *testing.T) {
			outcome, err := easyorm.CreateTable[Users](ctx, c, "users")
			assert.ErrorIs(t, err, easyorm.ErrConnectionUndefined)
			assert.Equal(t, easyorm.Fail, outcome)

			outcome, err = easyorm.Save(ctx, c, "users", Users{})
			assert.ErrorIs(t, err, easyorm.ErrConnectionUndefined)
			assert.Equal(t, easyorm.Fail, outcome)

			users, err := easyorm.Retrieve[Users](ctx, c, "users", 0, 10, nil)
			assert.ErrorIs(t, err, easyorm.ErrConnectionUndefined)
			assert.Empty(t, users)

			outcome, err = c.KillSessions(ctx, 10e9)
			assert.ErrorIs(t, err, easyorm.ErrConnectionUndefined)
			assert.Equal(t, easyorm.Fail, outcome)
		})
	}
}

// TestEmptyTableName ensures invalid arguments are rejected before any SQL runs.
func TestEmptyTableName(t *testing.T) {
	ctx := context.Background()
	c, mock := newMockClient(t, true)

	var aerr *easyorm.ArgumentError
	_, err := easyorm.CreateTable[Users](ctx, c, "")
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "table", aerr.Name)

	_, err = easyorm.Save(ctx, c, "", Users{})
	require.True(t, errors.As(err, &aerr))

	_, err = easyorm.Retrieve[Users](ctx, c, "", 0, 1, nil)
	require.True(t, errors.As(err, &aerr))

	_, err = easyorm.Save(ctx, c, "users; DROP TABLE x", Users{})
	require.True(t, errors.As(err, &aerr))

	_, err = easyorm.Retrieve[Users](ctx, c, "users", -1, 1, nil)
	require.True(t, errors.As(err, &aerr))

	// nothing may reach the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestOpen_UnknownDriver checks that Open rejects unsupported drivers.
func TestOpen_UnknownDriver(t *testing.T) {
	_, err := easyorm.Open(context.Background(), "oracle", "dsn", easyorm.Options{})
	require.Error(t, err)
}
