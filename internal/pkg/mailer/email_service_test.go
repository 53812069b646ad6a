package mailer

import (
	"testing"

	"course-marketplace-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNotification_EscapesContent(t *testing.T) {
	body, err := RenderNotification("<b>Ana</b>", "https://app.example.com/purchases/1", dto.NotificationMessage{
		Title:   "Payment confirmed",
		Message: "Your purchase of <script>alert(1)</script> is complete.",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Payment confirmed")
	assert.Contains(t, body, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `href="https://app.example.com/purchases/1"`)
}

func TestRenderNotification_NoLink(t *testing.T) {
	body, err := RenderNotification("Ana", "", dto.NotificationMessage{Title: "Refund rejected", Message: "See notes."})
	require.NoError(t, err)
	assert.NotContains(t, body, "href")
}
