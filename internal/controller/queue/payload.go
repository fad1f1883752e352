package queue

// uploadEvent is an S3 (or MinIO) bucket notification.
type uploadEvent struct {
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// resultEvent is what the worker reports once processing ends.
type resultEvent struct {
	VideoID      string `json:"videoId"`
	Status       string `json:"status"`
	OutputKey    string `json:"outputKey,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
