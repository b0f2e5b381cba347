package xl

import (
	"bytes"
	stdxml "encoding/xml"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func assertWellFormed(t *testing.T, name string, data []byte) {
	t.Helper()
	d := stdxml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := d.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err, "part %s", name)
	}
}

func partsByName(parts []Part) map[string]string {
	m := map[string]string{}
	for _, p := range parts {
		m[p.Name] = string(p.Data)
	}
	return m
}

func mustSheet(t *testing.T, wb *Workbook, name string) *Sheet {
	t.Helper()
	s, err := wb.AddSheet(name)
	require.NoError(t, err)
	return s
}
