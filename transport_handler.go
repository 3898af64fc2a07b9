package modbusdata

import (
	"context"
)

// ProcessPDUCallback answers a request PDU; nil means no response is sent.
type ProcessPDUCallback func(pdu PDU) *PDU

type TransportHandler interface {
	Start(ctx context.Context, processPDU ProcessPDUCallback) (err error)
	Stop() error
	Description() string
}
