package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestRoomGetOrCreateByName_ReturnsExisting(t *testing.T) {
	db, mock := newMockGormDB(t)
	r := NewRoomGormRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "user1_id", "user2_id"}).
		AddRow(7, "1-2", 1, 2)
	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE name = `).WillReturnRows(rows)

	room, err := r.GetOrCreateByName(context.Background(), "1-2", 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomGetOrCreateByName_CreatesWhenMissing(t *testing.T) {
	db, mock := newMockGormDB(t)
	r := NewRoomGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE name = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "rooms" (.+) ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	room, err := r.GetOrCreateByName(context.Background(), "1-2", 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 同時接続でINSERTがスキップされたら既存行を取り直して返す
func TestRoomGetOrCreateByName_LostRace_RefetchesExisting(t *testing.T) {
	db, mock := newMockGormDB(t)
	r := NewRoomGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE name = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "rooms" (.+) ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE name = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user1_id", "user2_id"}).
			AddRow(9, "1-2", 1, 2))

	room, err := r.GetOrCreateByName(context.Background(), "1-2", 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
