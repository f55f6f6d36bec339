package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a ShotService client speaking the JSON codec
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CalculateDistance(ctx context.Context, in *CalculateDistanceRequest, opts ...grpc.CallOption) (*CalculateDistanceResponse, error) {
	return invoke[CalculateDistanceResponse](ctx, c.cc, "CalculateDistance", in, opts)
}

func (c *Client) GetHoleDistances(ctx context.Context, in *GetHoleDistancesRequest, opts ...grpc.CallOption) (*GetHoleDistancesResponse, error) {
	return invoke[GetHoleDistancesResponse](ctx, c.cc, "GetHoleDistances", in, opts)
}

func (c *Client) RecordShot(ctx context.Context, in *RecordShotRequest, opts ...grpc.CallOption) (*RecordShotResponse, error) {
	return invoke[RecordShotResponse](ctx, c.cc, "RecordShot", in, opts)
}

func (c *Client) ListShots(ctx context.Context, in *ListShotsRequest, opts ...grpc.CallOption) (*ListShotsResponse, error) {
	return invoke[ListShotsResponse](ctx, c.cc, "ListShots", in, opts)
}

func (c *Client) GetShotStats(ctx context.Context, in *GetShotStatsRequest, opts ...grpc.CallOption) (*GetShotStatsResponse, error) {
	return invoke[GetShotStatsResponse](ctx, c.cc, "GetShotStats", in, opts)
}

func (c *Client) AnalyzeClubPerformance(ctx context.Context, in *AnalyzeClubPerformanceRequest, opts ...grpc.CallOption) (*AnalyzeClubPerformanceResponse, error) {
	return invoke[AnalyzeClubPerformanceResponse](ctx, c.cc, "AnalyzeClubPerformance", in, opts)
}

func (c *Client) GetHeatMap(ctx context.Context, in *GetHeatMapRequest, opts ...grpc.CallOption) (*GetHeatMapResponse, error) {
	return invoke[GetHeatMapResponse](ctx, c.cc, "GetHeatMap", in, opts)
}

func (c *Client) AnalyzeShotPatterns(ctx context.Context, in *AnalyzeShotPatternsRequest, opts ...grpc.CallOption) (*AnalyzeShotPatternsResponse, error) {
	return invoke[AnalyzeShotPatternsResponse](ctx, c.cc, "AnalyzeShotPatterns", in, opts)
}

func (c *Client) GetPerformanceTrends(ctx context.Context, in *GetPerformanceTrendsRequest, opts ...grpc.CallOption) (*GetPerformanceTrendsResponse, error) {
	return invoke[GetPerformanceTrendsResponse](ctx, c.cc, "GetPerformanceTrends", in, opts)
}

func (c *Client) GetHolePerformance(ctx context.Context, in *GetHolePerformanceRequest, opts ...grpc.CallOption) (*GetHolePerformanceResponse, error) {
	return invoke[GetHolePerformanceResponse](ctx, c.cc, "GetHolePerformance", in, opts)
}

func (c *Client) GetTrajectory(ctx context.Context, in *GetTrajectoryRequest, opts ...grpc.CallOption) (*GetTrajectoryResponse, error) {
	return invoke[GetTrajectoryResponse](ctx, c.cc, "GetTrajectory", in, opts)
}

func (c *Client) CreateRound(ctx context.Context, in *CreateRoundRequest, opts ...grpc.CallOption) (*CreateRoundResponse, error) {
	return invoke[CreateRoundResponse](ctx, c.cc, "CreateRound", in, opts)
}

func (c *Client) ListCourses(ctx context.Context, in *ListCoursesRequest, opts ...grpc.CallOption) (*ListCoursesResponse, error) {
	return invoke[ListCoursesResponse](ctx, c.cc, "ListCourses", in, opts)
}

func (c *Client) ListRounds(ctx context.Context, in *ListRoundsRequest, opts ...grpc.CallOption) (*ListRoundsResponse, error) {
	return invoke[ListRoundsResponse](ctx, c.cc, "ListRounds", in, opts)
}

func (c *Client) UpdateScore(ctx context.Context, in *UpdateScoreRequest, opts ...grpc.CallOption) (*UpdateScoreResponse, error) {
	return invoke[UpdateScoreResponse](ctx, c.cc, "UpdateScore", in, opts)
}

func (c *Client) GetScorecard(ctx context.Context, in *GetScorecardRequest, opts ...grpc.CallOption) (*GetScorecardResponse, error) {
	return invoke[GetScorecardResponse](ctx, c.cc, "GetScorecard", in, opts)
}

func (c *Client) GenerateRoundReport(ctx context.Context, in *GenerateRoundReportRequest, opts ...grpc.CallOption) (*GenerateRoundReportResponse, error) {
	return invoke[GenerateRoundReportResponse](ctx, c.cc, "GenerateRoundReport", in, opts)
}

func (c *Client) GetJobStatus(ctx context.Context, in *GetJobStatusRequest, opts ...grpc.CallOption) (*GetJobStatusResponse, error) {
	return invoke[GetJobStatusResponse](ctx, c.cc, "GetJobStatus", in, opts)
}

func (c *Client) ListJobs(ctx context.Context, in *ListJobsRequest, opts ...grpc.CallOption) (*ListJobsResponse, error) {
	return invoke[ListJobsResponse](ctx, c.cc, "ListJobs", in, opts)
}
