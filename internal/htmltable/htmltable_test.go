package htmltable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTables(t *testing.T) {
	t.Parallel()

	const page = `<html><body>
	<table>
		<tr><th> Heure </th><th>Temp</th></tr>
		<tr><td>23 h</td><td> 12.5 °C </td></tr>
	</table>
	<table>
		<tr><td>lone cell</td></tr>
	</table>
	</body></html>`

	tables, err := Tables(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	require.Equal(t, [][]string{
		{"Heure", "Temp"},
		{"23 h", "12.5 °C"},
	}, tables[0])
	require.Equal(t, [][]string{{"lone cell"}}, tables[1])
}

func TestTablesSkipsEmptyRows(t *testing.T) {
	t.Parallel()

	const page = `<table><tr></tr><tr><td>a</td></tr></table>`

	tables, err := Tables(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Equal(t, [][]string{{"a"}}, tables[0])
}

func TestTablesNoTables(t *testing.T) {
	t.Parallel()

	tables, err := Tables(strings.NewReader(`<html><body><p>nothing</p></body></html>`))
	require.NoError(t, err)
	require.Empty(t, tables)
}

func TestSelectOptions(t *testing.T) {
	t.Parallel()

	const page = `<form>
	<select name="code">
		<option value="7110"> Brest-Guipavas (29) </option>
		<option value="7222">Nantes (44)</option>
	</select>
	<select name="other"><option value="x">ignored</option></select>
	</form>`

	options, err := SelectOptions(strings.NewReader(page))
	require.NoError(t, err)
	require.Equal(t, []Option{
		{Text: "Brest-Guipavas (29)", Value: "7110"},
		{Text: "Nantes (44)", Value: "7222"},
	}, options)
}

func TestSelectOptionsMissingSelect(t *testing.T) {
	t.Parallel()

	options, err := SelectOptions(strings.NewReader(`<html><body></body></html>`))
	require.NoError(t, err)
	require.Nil(t, options)
}

func TestSelectOptionsMissingValueAttr(t *testing.T) {
	t.Parallel()

	options, err := SelectOptions(strings.NewReader(`<select><option>bare</option></select>`))
	require.NoError(t, err)
	require.Equal(t, []Option{{Text: "bare", Value: ""}}, options)
}
