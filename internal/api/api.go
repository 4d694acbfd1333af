// Package api defines the RPC surface of the hisab server: procedure names,
// request and response messages, handler constructors and typed clients.
//
// Messages are plain Go structs carried over Connect with a JSON codec, so any
// Connect or plain HTTP/JSON client can call a procedure with
//
//	POST /hisab.v1.GroupService/GetDashboard
//	Content-Type: application/json
//
// Money is a decimal.Decimal and travels as a JSON string ("333.33").
package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// route binds one procedure to its connect handler.
type route struct {
	procedure string
	handler   http.Handler
}

func unary[Req, Res any](
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) route {
	return route{procedure: procedure, handler: connect.NewUnaryHandler(procedure, fn, opts...)}
}

// handlerOptions puts the JSON codec in front of caller supplied options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// serviceHandler returns the mount path and handler of one service.
func serviceHandler(service string, routes ...route) (string, http.Handler) {
	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.procedure, r.handler)
	}
	return "/" + service + "/", mux
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

var (
	_ AuthServiceHandler   = (*AuthServiceClient)(nil)
	_ GroupServiceHandler  = (*GroupServiceClient)(nil)
	_ LedgerServiceHandler = (*LedgerServiceClient)(nil)
	_ InboxServiceHandler  = (*InboxServiceClient)(nil)
	_ CashServiceHandler   = (*CashServiceClient)(nil)
)
