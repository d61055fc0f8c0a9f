package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(send sendFunc) *Service {
	s := NewService(Config{
		Host:      "smtp.test",
		Port:      "587",
		Username:  "user",
		Password:  "pass",
		FromEmail: "notificaciones@salud.co",
		FromName:  "Salud Ocupacional",
	})
	s.send = send
	return s
}

func TestSendBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody string
	s := newTestService(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, string(msg)
		return nil
	})

	err := s.Send(context.Background(), Message{
		To:      []string{" Ana <ana@empresa.co>", "ops@empresa.co"},
		Subject: "Resultado de exámenes",
		HTML:    "<p>hola</p>",
		Text:    "hola",
		ReplyTo: "soporte@salud.co",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:587", gotAddr)
	assert.Equal(t, "notificaciones@salud.co", gotFrom)
	assert.Equal(t, []string{"ana@empresa.co", "ops@empresa.co"}, gotTo)
	assert.Contains(t, gotBody, "Reply-To: soporte@salud.co\r\n")
	assert.Contains(t, gotBody, "multipart/alternative")
	assert.Contains(t, gotBody, "<p>hola</p>")
	assert.NotContains(t, gotBody, "Resultado de exámenes")
}

func TestSendValidation(t *testing.T) {
	s := newTestService(func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	})
	ctx := context.Background()

	cases := []Message{
		{Subject: "x", HTML: "<p>x</p>"},
		{To: []string{"not-an-address"}, Subject: "x", HTML: "<p>x</p>"},
		{To: []string{"a@b.co"}, Subject: "", HTML: "<p>x</p>"},
		{To: []string{"a@b.co"}, Subject: "x\r\nBcc: evil@x.co", HTML: "<p>x</p>"},
		{To: []string{"a@b.co"}, Subject: "x", HTML: "  "},
		{To: []string{"a@b.co"}, Subject: "x", HTML: "<p>x</p>", ReplyTo: "nope"},
	}
	for _, msg := range cases {
		assert.ErrorIs(t, s.Send(ctx, msg), ErrInvalidInput)
	}
}

func TestSendNotConfigured(t *testing.T) {
	s := NewService(Config{Host: "smtp.test"})
	assert.False(t, s.IsConfigured())
	err := s.Send(context.Background(), Message{To: []string{"a@b.co"}, Subject: "x", HTML: "y"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendWrapsTransportError(t *testing.T) {
	s := newTestService(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	})
	err := s.Send(context.Background(), Message{To: []string{"a@b.co"}, Subject: "x", HTML: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535")
}

func TestTemplatesEscapeInput(t *testing.T) {
	msg, err := OrderCreated("ips@prestador.co", OrderCreatedData{
		ProviderName:  "IPS <script>",
		OrderNumber:   "ORD-20240301-ABC123",
		CompanyName:   "Constructora Andina",
		CandidateName: "Juan Pérez",
		Services:      []string{"Audiometría", "Visiometría"},
		Total:         "$65.000",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ips@prestador.co"}, msg.To)
	assert.Equal(t, "Nueva orden de servicio ORD-20240301-ABC123", msg.Subject)
	assert.Contains(t, msg.HTML, "Audiometría")
	assert.NotContains(t, msg.HTML, "<script>")

	msg, err = StaleSolicitudes("ops@salud.co", StaleSolicitudesData{Hours: 48, Items: []StaleItem{{Title: "Corrección", Company: "Andina"}}})
	require.NoError(t, err)
	assert.Equal(t, "Solicitudes pendientes", msg.Subject)
	assert.True(t, strings.Contains(msg.HTML, "48 horas"))
}
