package sqlstorage

import (
	"errors"
	"testing"

	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mysqldb struct {
	dropped   []string
	created   []sqldb.TableData
	inserted  []sqldb.TableData
	insertErr error
}

func (m *mysqldb) CreateTable(t sqldb.TableData) error {
	m.created = append(m.created, t)
	return nil
}

func (m *mysqldb) Insert(t sqldb.TableData) error {
	m.inserted = append(m.inserted, t)
	return m.insertErr
}

func (m *mysqldb) DropTable(t sqldb.TableData) error {
	m.dropped = append(m.dropped, t.TableName)
	return nil
}

func testOptions(batchCount int) options {
	o := defaultOptions
	o.BatchCount = batchCount
	return o
}

func record(date string, prices ...string) *article.Record {
	r := &article.Record{Date: date, Title: date + "虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/" + date}
	for _, p := range prices {
		r.PriceRows = append(r.PriceRows, article.PriceRow{Variety: "青虾", Spec: "3-4钱", Price: p, CompareToYesterday: "平"})
	}
	return r
}

func TestSQLStorage_Save(t *testing.T) {
	db := &mysqldb{}
	s := newStore(db, testOptions(2))

	require.NoError(t, s.Save(record("2024-06-05", "25", "28", "30")))
	require.NoError(t, s.Save(record("2024-06-06", "26")))

	// 表只创建一次，默认不删除旧表
	assert.Empty(t, db.dropped)
	require.Len(t, db.created, 1)
	assert.Equal(t, "xiagu_price", db.created[0].TableName)
	assert.True(t, db.created[0].AutoKey)
	assert.Len(t, db.created[0].ColumnNames, 7)

	require.Len(t, db.inserted, 2)
	assert.Equal(t, 2, db.inserted[0].DataCount)
	assert.Equal(t, []interface{}{
		"2024-06-05", "2024-06-05虾谷龙虾报价", "https://mp.weixin.qq.com/s/2024-06-05", "青虾", "3-4钱", "25", "平",
		"2024-06-05", "2024-06-05虾谷龙虾报价", "https://mp.weixin.qq.com/s/2024-06-05", "青虾", "3-4钱", "28", "平",
	}, db.inserted[0].Args)
	assert.Equal(t, 2, db.inserted[1].DataCount)
	assert.Empty(t, s.rows)
}

func TestSQLStorage_Flush(t *testing.T) {
	tests := []struct {
		name      string
		records   []*article.Record
		insertErr error
		inserts   int
		wantErr   bool
	}{
		{name: "empty", inserts: 0},
		{name: "no price rows", records: []*article.Record{record("2024-06-05")}, inserts: 0},
		{name: "right data", records: []*article.Record{record("2024-06-05", "25")}, inserts: 1},
		{name: "insert failed", records: []*article.Record{record("2024-06-05", "25")}, insertErr: errors.New("connection refused"), inserts: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mysqldb{insertErr: tt.insertErr}
			s := newStore(db, testOptions(20))
			require.NoError(t, s.Save(tt.records...))

			err := s.Flush()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, db.inserted, tt.inserts)
			assert.Nil(t, s.rows)
		})
	}
}

func TestSQLStorage_Reset(t *testing.T) {
	db := &mysqldb{}
	o := testOptions(20)
	o.reset = true
	s := newStore(db, o)

	require.NoError(t, s.Save(record("2024-06-05", "25")))
	require.NoError(t, s.Save(record("2024-06-06", "26")))
	require.NoError(t, s.Flush())

	assert.Equal(t, []string{"xiagu_price"}, db.dropped)
	assert.Len(t, db.created, 1)
	require.Len(t, db.inserted, 1)
	assert.Equal(t, 2, db.inserted[0].DataCount)
}

func TestSQLStorage_NilLogger(t *testing.T) {
	db := &mysqldb{}
	s := newStore(db, options{tableName: "xiagu_price", BatchCount: 1})

	assert.NotPanics(t, func() {
		require.NoError(t, s.Save(record("2024-06-05", "25")))
	})
	assert.Len(t, db.inserted, 1)
}
