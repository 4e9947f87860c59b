package okx

import (
	"context"

	"okxflow/internal/transport"
	"okxflow/models"
)

// buildSubscribeBatch constructs the three subscribe requests for the given
// native instrument ids, one request per channel in sending order: trades,
// order book, instruments. Each request carries one arg per instrument in the
// order supplied.
func buildSubscribeBatch(instIDs []string) []models.SubscribeRequest {
	channels := []string{wsTradesChannel, wsOrderBookChannel, wsInstrumentsChannel}
	batch := make([]models.SubscribeRequest, 0, len(channels))
	for _, channel := range channels {
		req := models.SubscribeRequest{
			Op:   "subscribe",
			Args: make([]models.SubscribeArg, 0, len(instIDs)),
		}
		for _, instID := range instIDs {
			req.Args = append(req.Args, models.SubscribeArg{Channel: channel, InstID: instID})
		}
		batch = append(batch, req)
	}
	return batch
}

// subscribe sends the full subscribe batch over the connection, paced by the
// subscribe rate limiter so the burst stays inside the exchange's
// per-connection limits. Send failures propagate; a cancelled context is
// surfaced as-is.
func (r *Okx_Stream_Reader) subscribe(ctx context.Context, conn transport.StreamConn, instIDs []string) error {
	for _, req := range buildSubscribeBatch(instIDs) {
		if err := r.subLimiter.Wait(ctx); err != nil {
			return err
		}
		if err := conn.Send(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
