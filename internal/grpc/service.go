package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "shottracker.v1.ShotService"

// ShotServiceServer is the server API for ShotService
type ShotServiceServer interface {
	CalculateDistance(context.Context, *CalculateDistanceRequest) (*CalculateDistanceResponse, error)
	GetHoleDistances(context.Context, *GetHoleDistancesRequest) (*GetHoleDistancesResponse, error)
	RecordShot(context.Context, *RecordShotRequest) (*RecordShotResponse, error)
	ListShots(context.Context, *ListShotsRequest) (*ListShotsResponse, error)
	GetShotStats(context.Context, *GetShotStatsRequest) (*GetShotStatsResponse, error)
	AnalyzeClubPerformance(context.Context, *AnalyzeClubPerformanceRequest) (*AnalyzeClubPerformanceResponse, error)
	GetHeatMap(context.Context, *GetHeatMapRequest) (*GetHeatMapResponse, error)
	AnalyzeShotPatterns(context.Context, *AnalyzeShotPatternsRequest) (*AnalyzeShotPatternsResponse, error)
	GetPerformanceTrends(context.Context, *GetPerformanceTrendsRequest) (*GetPerformanceTrendsResponse, error)
	GetHolePerformance(context.Context, *GetHolePerformanceRequest) (*GetHolePerformanceResponse, error)
	GetTrajectory(context.Context, *GetTrajectoryRequest) (*GetTrajectoryResponse, error)
	CreateRound(context.Context, *CreateRoundRequest) (*CreateRoundResponse, error)
	ListCourses(context.Context, *ListCoursesRequest) (*ListCoursesResponse, error)
	ListRounds(context.Context, *ListRoundsRequest) (*ListRoundsResponse, error)
	UpdateScore(context.Context, *UpdateScoreRequest) (*UpdateScoreResponse, error)
	GetScorecard(context.Context, *GetScorecardRequest) (*GetScorecardResponse, error)
	GenerateRoundReport(context.Context, *GenerateRoundReportRequest) (*GenerateRoundReportResponse, error)
	GetJobStatus(context.Context, *GetJobStatusRequest) (*GetJobStatusResponse, error)
	ListJobs(context.Context, *ListJobsRequest) (*ListJobsResponse, error)
}

// RegisterShotServiceServer registers srv with the gRPC server
func RegisterShotServiceServer(s grpc.ServiceRegistrar, srv ShotServiceServer) {
	s.RegisterService(&ShotServiceDesc, srv)
}

// ShotServiceDesc describes ShotService for grpc.ServiceRegistrar
var ShotServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CalculateDistance", Handler: unary("CalculateDistance", ShotServiceServer.CalculateDistance)},
		{MethodName: "GetHoleDistances", Handler: unary("GetHoleDistances", ShotServiceServer.GetHoleDistances)},
		{MethodName: "RecordShot", Handler: unary("RecordShot", ShotServiceServer.RecordShot)},
		{MethodName: "ListShots", Handler: unary("ListShots", ShotServiceServer.ListShots)},
		{MethodName: "GetShotStats", Handler: unary("GetShotStats", ShotServiceServer.GetShotStats)},
		{MethodName: "AnalyzeClubPerformance", Handler: unary("AnalyzeClubPerformance", ShotServiceServer.AnalyzeClubPerformance)},
		{MethodName: "GetHeatMap", Handler: unary("GetHeatMap", ShotServiceServer.GetHeatMap)},
		{MethodName: "AnalyzeShotPatterns", Handler: unary("AnalyzeShotPatterns", ShotServiceServer.AnalyzeShotPatterns)},
		{MethodName: "GetPerformanceTrends", Handler: unary("GetPerformanceTrends", ShotServiceServer.GetPerformanceTrends)},
		{MethodName: "GetHolePerformance", Handler: unary("GetHolePerformance", ShotServiceServer.GetHolePerformance)},
		{MethodName: "GetTrajectory", Handler: unary("GetTrajectory", ShotServiceServer.GetTrajectory)},
		{MethodName: "CreateRound", Handler: unary("CreateRound", ShotServiceServer.CreateRound)},
		{MethodName: "ListCourses", Handler: unary("ListCourses", ShotServiceServer.ListCourses)},
		{MethodName: "ListRounds", Handler: unary("ListRounds", ShotServiceServer.ListRounds)},
		{MethodName: "UpdateScore", Handler: unary("UpdateScore", ShotServiceServer.UpdateScore)},
		{MethodName: "GetScorecard", Handler: unary("GetScorecard", ShotServiceServer.GetScorecard)},
		{MethodName: "GenerateRoundReport", Handler: unary("GenerateRoundReport", ShotServiceServer.GenerateRoundReport)},
		{MethodName: "GetJobStatus", Handler: unary("GetJobStatus", ShotServiceServer.GetJobStatus)},
		{MethodName: "ListJobs", Handler: unary("ListJobs", ShotServiceServer.ListJobs)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shottracker/v1/shot_service.json",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary adapts a typed ShotServiceServer method to a grpc.MethodHandler
func unary[Req, Resp any](method string, call func(ShotServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ShotServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ShotServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
