package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesDate(t *testing.T) {
	tmpl, err := New(`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '{date}'`)
	assert.NoError(t, err)

	got := tmpl.Render("2016-08-17")
	assert.Equal(t, `INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-17'`, got)
}

func TestEmptyTemplateRejected(t *testing.T) {
	_, err := New("   ")
	assert.Error(t, err)
}

func TestMissingPlaceholderRejected(t *testing.T) {
	_, err := New(`INSERT INTO tmp_daily SELECT 1`)
	assert.Error(t, err)
}

func TestMultiplePlaceholdersRejected(t *testing.T) {
	_, err := New(`INSERT INTO tmp_daily SELECT '{date}', '{date}'`)
	assert.Error(t, err)
}

func TestForbiddenStatements(t *testing.T) {
	cases := []string{
		`DROP TABLE tmp_daily; INSERT INTO t VALUES ('{date}')`,
		`TRUNCATE tmp_daily; INSERT INTO t VALUES ('{date}')`,
		`ALTER TABLE t ADD COLUMN d date; INSERT INTO t VALUES ('{date}')`,
	}
	for _, sql := range cases {
		_, err := New(sql)
		assert.Error(t, err, sql)
	}
}

func TestKeywordInsideIdentifierAllowed(t *testing.T) {
	tmpl, err := New(`INSERT INTO tmp_daily SELECT dropped_at FROM events WHERE event_date = '{date}'`)
	assert.NoError(t, err)
	assert.Contains(t, tmpl.SQL(), "dropped_at")
}
