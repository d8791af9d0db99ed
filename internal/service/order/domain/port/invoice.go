package port

import "context"

// InvoiceRenderer 是渲染协作方的出站端口：HTML 进，文档 URL 出。
type InvoiceRenderer interface {
	RenderPDF(ctx context.Context, html string) (string, error)
}

// RealtimeBus 向在线用户广播实时事件，尽力而为。
type RealtimeBus interface {
	Emit(ctx context.Context, event string, recipients []int64, payload any) error
}
