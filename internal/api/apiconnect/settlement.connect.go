package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "splitledger.v1.SettlementService"

// Procedure paths, used for routing and in interceptors.
const (
	SettlementServiceRecordSettlementProcedure   = "/splitledger.v1.SettlementService/RecordSettlement"
	SettlementServiceCompleteSettlementProcedure = "/splitledger.v1.SettlementService/CompleteSettlement"
	SettlementServiceCancelSettlementProcedure   = "/splitledger.v1.SettlementService/CancelSettlement"
	SettlementServiceListSettlementsProcedure    = "/splitledger.v1.SettlementService/ListSettlements"
)

// SettlementServiceHandler is the server side of SettlementService.
type SettlementServiceHandler interface {
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	CompleteSettlement(context.Context, *connect.Request[api.CompleteSettlementRequest]) (*connect.Response[api.CompleteSettlementResponse], error)
	CancelSettlement(context.Context, *connect.Request[api.CancelSettlementRequest]) (*connect.Response[api.CancelSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
// SettlementService records repayments between members.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	settlementServiceRecordSettlementHandler := connect.NewUnaryHandler(
		SettlementServiceRecordSettlementProcedure,
		svc.RecordSettlement,
		opts...,
	)
	settlementServiceCompleteSettlementHandler := connect.NewUnaryHandler(
		SettlementServiceCompleteSettlementProcedure,
		svc.CompleteSettlement,
		opts...,
	)
	settlementServiceCancelSettlementHandler := connect.NewUnaryHandler(
		SettlementServiceCancelSettlementProcedure,
		svc.CancelSettlement,
		opts...,
	)
	settlementServiceListSettlementsHandler := connect.NewUnaryHandler(
		SettlementServiceListSettlementsProcedure,
		svc.ListSettlements,
		opts...,
	)
	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceRecordSettlementProcedure:
			settlementServiceRecordSettlementHandler.ServeHTTP(w, r)
		case SettlementServiceCompleteSettlementProcedure:
			settlementServiceCompleteSettlementHandler.ServeHTTP(w, r)
		case SettlementServiceCancelSettlementProcedure:
			settlementServiceCancelSettlementHandler.ServeHTTP(w, r)
		case SettlementServiceListSettlementsProcedure:
			settlementServiceListSettlementsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SettlementServiceClient is a client for the SettlementService service.
type SettlementServiceClient interface {
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	CompleteSettlement(context.Context, *connect.Request[api.CompleteSettlementRequest]) (*connect.Response[api.CompleteSettlementResponse], error)
	CancelSettlement(context.Context, *connect.Request[api.CancelSettlementRequest]) (*connect.Response[api.CancelSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewSettlementServiceClient constructs a client for SettlementService. baseURL is the server root,
// e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	opts = clientOptions(opts)
	return &settlementServiceClient{
		recordSettlement: connect.NewClient[api.RecordSettlementRequest, api.RecordSettlementResponse](
			httpClient,
			baseURL+SettlementServiceRecordSettlementProcedure,
			opts...,
		),
		completeSettlement: connect.NewClient[api.CompleteSettlementRequest, api.CompleteSettlementResponse](
			httpClient,
			baseURL+SettlementServiceCompleteSettlementProcedure,
			opts...,
		),
		cancelSettlement: connect.NewClient[api.CancelSettlementRequest, api.CancelSettlementResponse](
			httpClient,
			baseURL+SettlementServiceCancelSettlementProcedure,
			opts...,
		),
		listSettlements: connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](
			httpClient,
			baseURL+SettlementServiceListSettlementsProcedure,
			opts...,
		),
	}
}

type settlementServiceClient struct {
	recordSettlement   *connect.Client[api.RecordSettlementRequest, api.RecordSettlementResponse]
	completeSettlement *connect.Client[api.CompleteSettlementRequest, api.CompleteSettlementResponse]
	cancelSettlement   *connect.Client[api.CancelSettlementRequest, api.CancelSettlementResponse]
	listSettlements    *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CompleteSettlement(ctx context.Context, req *connect.Request[api.CompleteSettlementRequest]) (*connect.Response[api.CompleteSettlementResponse], error) {
	return c.completeSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CancelSettlement(ctx context.Context, req *connect.Request[api.CancelSettlementRequest]) (*connect.Response[api.CancelSettlementResponse], error) {
	return c.cancelSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
