package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chat-session/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	freezeNow(t)
	session := reactedSession("test1")

	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(session, &buf))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "test1", doc.Session.ID)
	assert.Equal(t, "_chat.txt", doc.Session.Source)
	assert.Equal(t, 4, doc.Session.Messages)
	assert.True(t, doc.Exported.Equal(fixedNow))
	require.Len(t, doc.Records, 4)
	assert.Equal(t, session.Records[2].Body, doc.Records[2].Body)
	assert.Equal(t, internal.PeriodMorning, doc.Records[0].TimePeriod)
	assert.Equal(t, session.Records[1].Reactions, doc.Records[1].Reactions)

	assert.True(t, strings.HasPrefix(buf.String(), "session:\n  id: test1\n"), "two-space indent")
}

func TestYAMLExporter_MatchesJSONDocument(t *testing.T) {
	freezeNow(t)
	session := internal.CreateTestSession("same")

	var jsonBuf, yamlBuf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(session, &jsonBuf))
	require.NoError(t, (&YAMLExporter{}).Export(session, &yamlBuf))

	var fromYAML document
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, newDocument(session).Session.Participants, fromYAML.Session.Participants)
	assert.Equal(t, len(session.Records), len(fromYAML.Records))
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("Extension() = %q, want yaml", got)
	}
}
