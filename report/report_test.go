/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/B4ckslash/jar-verifier/checker"
)

func TestWriteFormatsBlocksInOrder(t *testing.T) {
	deps := []checker.Dependencies{
		{
			ClassName:    "acme/A",
			Classes:      []string{"acme/Missing"},
			ClassMethods: []checker.MethodRef{{Owner: "acme/B", Signature: "bar()V"}},
		},
		{
			ClassName:    "acme/C",
			IfaceMethods: []checker.MethodRef{{Owner: "acme/I", Signature: "m()V"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, deps))

	want := "acme/A\n" +
		"\tClass acme/Missing\n" +
		"\tClassMethod acme/B#bar()V\n" +
		"acme/C\n" +
		"\tIfaceMethod acme/I#m()V\n"
	require.Equal(t, want, buf.String())
}

func TestWriteEmptyProducesEmptyOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	require.Zero(t, buf.Len())
}
