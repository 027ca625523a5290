package utils

import (
	"errors"
	"regexp"
)

const ToolUserAgent = "speedtest-cli"
const LogFile = ".speedtest.log"

const DefaultBufferSize = 1024 * 256 // read buffer for the measured stream
const socketBufferSize = 1024 * 1024 * 4

var ErrInvalidS3Path = errors.New("invalid S3 path, expected s3://BUCKET/KEY or BUCKET/KEY")

var s3PathRegex = regexp.MustCompile(`^(?:s3://)?([^/:]+)/(.+)$`)
