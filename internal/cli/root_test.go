package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "mtb dev\n", out.String())
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"migrate", "consume", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	consume, _, err := root.Find([]string{"consume"})
	require.NoError(t, err)
	assert.Equal(t, "logs/booking.log", consume.Flags().Lookup("file").DefValue)
	assert.NotNil(t, root.Flags().Lookup("plain"))
}
