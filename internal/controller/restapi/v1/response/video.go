package response

type CreateVideo struct {
	VideoID   string `json:"videoId" example:"3f2b8c1e-9a4d-4e6f-8b7a-1c2d3e4f5a6b"`
	UploadURL string `json:"uploadUrl" example:"https://bucket.s3.amazonaws.com/raw/..."`
	Status    string `json:"status" example:"PENDING"`
}

type Video struct {
	VideoID     string  `json:"videoId"`
	FileName    string  `json:"fileName"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	DownloadURL *string `json:"downloadUrl"`
}
