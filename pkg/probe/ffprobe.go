package probe

import (
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

const (
	ffprobeName   = "ffprobe"
	hideBannerArg = "-hide_banner"
	logLevelArg   = "-loglevel"
	quietLogLevel = "quiet"
	showErrorArg  = "-show_error"
	showFormatArg = "-show_format"
	outputArg     = "-of"
	jsonOutput    = "json"
)

type format struct {
	Name     string `json:"format_name"`
	Duration string `json:"duration"`
}

type probeError struct {
	Code    int    `json:"code"`
	Message string `json:"string"`
}

type ffprobeResult struct {
	ProbeError probeError `json:"error"`
	Format     format     `json:"format"`
}

// Duration returns length of the audio file in whole seconds, as reported by "ffprobe" ran as a separate process.
func Duration(filepath string) (int, error) {
	result, err := probeWithFfprobe(filepath)
	if err != nil {
		return 0, err
	}

	if result.ProbeError.Code != 0 {
		return 0, fmt.Errorf("probing error from ffprobe: %d (%s)", result.ProbeError.Code, result.ProbeError.Message)
	}

	duration, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse duration: %w", err)
	}

	return int(math.Round(duration)), nil
}

func probeWithFfprobe(filepath string) (ffprobeResult, error) {
	result := ffprobeResult{}

	ffprobeargs := []string{
		hideBannerArg,
		logLevelArg, quietLogLevel,
		showErrorArg,
		showFormatArg,
		outputArg, jsonOutput,
		filepath,
	}
	cmd := exec.Command(ffprobeName, ffprobeargs...)

	output, err := cmd.Output()
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(output, &result)
	return result, err
}
