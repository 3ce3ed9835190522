package model

// ServiceInfo 表示服务发现中心登记的一个服务
type ServiceInfo struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	URL           string         `json:"url"`
	Port          int            `json:"port"`
	Status        string         `json:"status"`
	LastHeartbeat string         `json:"last_heartbeat"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ServiceRegistration 表示注册服务时提交的字段，ID与心跳时间由发现中心生成
type ServiceRegistration struct {
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	Port     int            `json:"port"`
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HealthResponse 表示网关健康检查结果
type HealthResponse struct {
	Status         string `json:"status"`
	Gateway        string `json:"gateway"`
	ActiveServices int    `json:"active_services"`
	TotalServices  int    `json:"total_services"`
	Timestamp      string `json:"timestamp"`
}

// ApiResponse 表示控制台通用API响应
type ApiResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
