package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/restock/internal/config"
	"github.com/mamadbah2/restock/internal/domain/models"
	"github.com/mamadbah2/restock/internal/service/commands"
	client "github.com/mamadbah2/restock/pkg/clients/whatsapp"
)

type recordingClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (c *recordingClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	c.sent = append(c.sent, req)
	return &client.SendTextMessageResponse{}, c.err
}

type stubDispatcher struct {
	reply string
	err   error
	got   []models.Command
}

func (d *stubDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	d.got = append(d.got, cmd)
	return d.reply, d.err
}

var cfg = config.WhatsAppConfig{VerifyToken: "verify", GroupID: "group-1"}

func payload(messages ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: messages}}},
	}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(cfg, &recordingClient{}, &stubDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "verify", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "verify", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestHandleWebhookRepliesToSender(t *testing.T) {
	c := &recordingClient{}
	d := &stubDispatcher{reply: "Lista de compras"}
	svc := NewMetaWhatsAppService(cfg, c, d, nil)

	err := svc.HandleWebhook(context.Background(), payload(
		models.InboundMessage{From: "5511", Text: &models.TextContent{Body: "/lista CT"}},
		models.InboundMessage{From: "5522", Type: "image"},
	))
	require.NoError(t, err)

	require.Len(t, d.got, 1)
	assert.Equal(t, models.CommandShoppingList, d.got[0].Type)
	require.Len(t, c.sent, 1)
	assert.Equal(t, client.SendTextMessageRequest{To: "5511", Body: "Lista de compras"}, c.sent[0])
}

func TestHandleWebhookUserErrorsBecomeReplies(t *testing.T) {
	c := &recordingClient{}
	d := &stubDispatcher{err: models.ErrStoreNotFound}
	svc := NewMetaWhatsAppService(cfg, c, d, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), payload(
		models.InboundMessage{From: "5511", Text: &models.TextContent{Body: "/lista XX"}},
	)))
	require.Len(t, c.sent, 1)
	assert.Equal(t, "Loja nao encontrada.", c.sent[0].Body)
}

func TestHandleWebhookInternalErrorsAreReturned(t *testing.T) {
	c := &recordingClient{}
	d := &stubDispatcher{err: models.ErrStorageUnavailable}
	svc := NewMetaWhatsAppService(cfg, c, d, nil)

	err := svc.HandleWebhook(context.Background(), payload(
		models.InboundMessage{From: "5511", Interactive: &models.InteractiveContent{ButtonReply: &models.ButtonReply{ID: "/pedidos CT"}}},
	))
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
	assert.Empty(t, c.sent)
}

func TestOrderStatusChangedPostsToGroup(t *testing.T) {
	c := &recordingClient{}
	svc := NewMetaWhatsAppService(cfg, c, &stubDispatcher{}, nil)

	detail := models.NewOrderDetail(models.Order{ID: "o1", StoreName: "Centro", StoreCode: "CT", Status: models.OrderSent}, nil)
	require.NoError(t, svc.OrderStatusChanged(context.Background(), detail))
	require.Len(t, c.sent, 1)
	assert.True(t, c.sent[0].Group)
	assert.Equal(t, "group-1", c.sent[0].To)
	assert.Contains(t, c.sent[0].Body, "Pedido o1 - Centro (CT): enviado")

	c.err = errors.New("boom")
	assert.Error(t, svc.SendToGroup(context.Background(), "oi"))
}

var _ commands.Dispatcher = (*stubDispatcher)(nil)
