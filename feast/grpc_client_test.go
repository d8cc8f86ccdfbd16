package feast

import (
	"context"
	"testing"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// TestGrpcClient_GetOnlineFeatures 测试 gRPC 客户端的基本功能
// 注意：这是一个示例测试，实际使用时需要连接真实的 Feast 服务器
func TestGrpcClient_GetOnlineFeatures(t *testing.T) {
	t.Skip("需要连接真实的 Feast 服务器才能运行")

	ctx := context.Background()

	client, err := NewGrpcClient("localhost", 6565, "cinerec")
	if err != nil {
		t.Fatalf("创建客户端失败: %v", err)
	}
	defer client.Close()

	req := &GetOnlineFeaturesRequest{
		Features: []string{
			"movie_stats:avg_rating",
			"movie_stats:rating_count",
		},
		EntityRows: []map[string]interface{}{
			{"movie_id": int64(1)},
			{"movie_id": int64(3114)},
		},
		Project: "cinerec",
	}

	resp, err := client.GetOnlineFeatures(ctx, req)
	if err != nil {
		t.Fatalf("获取特征失败: %v", err)
	}

	if len(resp.FeatureVectors) != 2 {
		t.Errorf("期望 2 个特征向量，实际得到 %d 个", len(resp.FeatureVectors))
	}

	for i, fv := range resp.FeatureVectors {
		if len(fv.Values) == 0 {
			t.Errorf("特征向量 %d 为空", i)
		}
		t.Logf("特征向量 %d: %+v", i, fv.Values)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		wantHost string
		wantPort int
	}{
		{"localhost:6565", "localhost", 6565},
		{"grpc://localhost:6565", "localhost", 6565},
		{"feast.internal", "feast.internal", 0},
		{"localhost:abc", "localhost:abc", 0},
	}

	for _, tt := range tests {
		host, port := parseEndpoint(tt.endpoint)
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("parseEndpoint(%q) = (%q, %d), want (%q, %d)",
				tt.endpoint, host, port, tt.wantHost, tt.wantPort)
		}
	}
}

// TestFromSDKValue 测试 proto oneof 值类型解包。
// SDK 的 Rows() 返回 map[string]*types.Value，转换必须按 oneof
// 分支取值，不能落在字符串化兜底上。
func TestFromSDKValue(t *testing.T) {
	tests := []struct {
		name  string
		input *feasttypes.Value
		want  interface{}
	}{
		{"string", feastsdk.StrVal("Heat (1995)"), "Heat (1995)"},
		{"int64", feastsdk.Int64Val(100), float64(100)},
		{"int32", feastsdk.Int32Val(-7), float64(-7)},
		{"double", feastsdk.DoubleVal(4.5), 4.5},
		{"float", feastsdk.FloatVal(2.5), float64(2.5)},
		{"bool_true", feastsdk.BoolVal(true), float64(1)},
		{"bool_false", feastsdk.BoolVal(false), float64(0)},
		{"bytes", feastsdk.BytesVal([]byte("raw")), "raw"},
		{"unset oneof", &feasttypes.Value{}, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromSDKValue(tt.input)
			if got != tt.want {
				t.Errorf("fromSDKValue(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestFromSDKValueFeedsFeatures 保证解包结果能直接被数值特征路径消费：
// double 值必须以 float64 形式流入 conv.ToFloat64，不能退化成
// "double_val:4.5" 这样的 proto 文本。
func TestFromSDKValueFeedsFeatures(t *testing.T) {
	got := fromSDKValue(feastsdk.DoubleVal(4.5))
	f, ok := got.(float64)
	if !ok || f != 4.5 {
		t.Fatalf("fromSDKValue(DoubleVal) = %#v, want float64(4.5)", got)
	}
}
