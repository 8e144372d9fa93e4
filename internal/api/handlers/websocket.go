package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/service"
	"github.com/langchou/evcompare/pkg/ws"
)

// wsInitData 新连接的初始数据
func (h *Handler) wsInitData() *ws.InitData {
	presets, err := h.comparison.ListPresets(context.Background(), "")
	if err != nil {
		presets = nil
	}
	return &ws.InitData{
		Prices:          h.prices.Current(),
		EmissionFactors: h.emissionFactors(),
		Presets:         presets,
	}
}

// handleWSMessage 客户端每次修改输入都发送 compute，服务端重新计算并回复
func (h *Handler) handleWSMessage(ctx context.Context, c *ws.Client, msg ws.InboundMessage) *ws.Message {
	switch msg.Type {
	case ws.MsgTypeCompute:
		var req service.CompareRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return &ws.Message{Type: ws.MsgTypeError, Data: ws.ErrorData{Error: "Invalid compute request: " + err.Error()}}
		}

		resp, err := h.comparison.Compare(ctx, "ws", req)
		if err != nil {
			status, body := comparisonErrorBody(err)
			if status == http.StatusInternalServerError {
				h.logger.Error("Failed to compute comparison over websocket", zap.String("client_id", c.ID), zap.Error(err))
			}
			return &ws.Message{Type: ws.MsgTypeError, Data: ws.ErrorData{Error: body["error"].(string), Details: body["details"]}}
		}
		return &ws.Message{Type: ws.MsgTypeResult, Data: resp}

	default:
		return &ws.Message{Type: ws.MsgTypeError, Data: ws.ErrorData{Error: "Unknown message type: " + msg.Type}}
	}
}
