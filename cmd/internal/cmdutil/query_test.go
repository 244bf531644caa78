package cmdutil

import (
	"testing"

	"github.com/cockroachdb/dataexpect/dbconn"
	"github.com/cockroachdb/dataexpect/dbtable"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	for _, tc := range []struct {
		desc        string
		cfg         queryConfig
		dialect     string
		expected    string
		expectedErr string
	}{
		{
			desc:     "query wins",
			cfg:      queryConfig{query: "SELECT 1", table: "items"},
			dialect:  dbconn.DialectSQLite,
			expected: "SELECT 1",
		},
		{
			desc:     "table",
			cfg:      queryConfig{table: "pos.inventory", selectOpts: dbtable.SelectOpts{OrderBy: "period_key", Desc: true, Limit: 50}},
			dialect:  dbconn.DialectMySQL,
			expected: "SELECT * FROM `pos`.`inventory` ORDER BY `period_key` DESC LIMIT 50",
		},
		{
			desc:        "neither",
			dialect:     dbconn.DialectSQLite,
			expectedErr: "one of --query or --table must be set",
		},
		{
			desc:        "bad table",
			cfg:         queryConfig{table: "a.b.c.d"},
			dialect:     dbconn.DialectSQLite,
			expectedErr: `invalid table name "a.b.c.d"`,
		},
		{
			desc:        "unknown dialect",
			cfg:         queryConfig{table: "items"},
			dialect:     dbconn.MakeFakeConn("fake").Dialect(),
			expectedErr: `cannot build a table query for dialect "fake"`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			old := queryCfg
			defer func() { queryCfg = old }()
			queryCfg = tc.cfg

			q, err := Query(tc.dialect)
			if tc.expectedErr != "" {
				require.ErrorContains(t, err, tc.expectedErr)
				require.True(t, errorutil.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, q)
		})
	}
}
