package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/tests"
)

func testConfig() *core.Config {
	return &core.Config{AppName: "Formazione", TestMode: true}
}

func TestConsoleServiceMock(t *testing.T) {
	ResetSentMessages()
	svc := NewConsoleServiceMock(testConfig(), testutil.NewLogger())

	svc.SendMessages(
		&core.EmailMessage{
			To:      []mail.Address{{Name: "Giulia Verdi", Address: "giulia@test.test"}},
			Subject: "plain",
			BodyStr: "ciao",
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "ciao"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.test"}}, Subject: "no content"},
	)

	sent := Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "plain", sent[0].Subject)
	assert.Equal(t, "ciao", sent[0].TextContent)
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConfig(), testutil.NewLogger()).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Giulia Verdi", Address: "giulia@test.test"}},
		Cc:          []mail.Address{{Address: "ufficio@test.test"}},
		Subject:     "Nuovo corso programmato: Primo soccorso",
		TextContent: "testo",
	})

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Formazione] Nuovo corso programmato: Primo soccorso", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "giulia@test.test", p.To[0].Address)
	assert.Len(t, p.CC, 1)
	assert.Equal(t, "Formazione", m.From.Name)
	assert.Equal(t, "", m.From.Address) // no sender configured
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
