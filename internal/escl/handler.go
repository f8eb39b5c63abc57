package escl

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/alexpevzner-fork/escl-scand/internal/device"
)

// unitsPerInch is the eSCL wire unit: three-hundredths of an inch,
// used for every length in ScannerCapabilities and ScanSettings.
const unitsPerInch = 300

var errBadReply = errors.New("escl: malformed reply")

// Handler implements device.ProtocolHandler against the eSCL wire
// protocol (ScannerCapabilities, ScanJobs, NextDocument, ScannerStatus,
// and DELETE for cancel/cleanup), grounded on the request/response
// shapes a real eSCL server produces.
type Handler struct{}

// New returns an eSCL Handler. It is stateless; all per-job state lives
// in device.OpContext/device.Device.
func New() *Handler { return &Handler{} }

func (h *Handler) Name() string { return "escl" }

func (h *Handler) BuildCaps(_ context.Context, op device.OpContext) (device.HTTPRequest, error) {
	return device.HTTPRequest{Method: "GET", Path: "ScannerCapabilities"}, nil
}

func (h *Handler) DecodeCaps(body []byte, statusCode int) (device.Capabilities, device.OpResult, error) {
	if statusCode != 200 {
		return device.Capabilities{}, device.OpResult{NextOp: device.OpFinish, Status: device.StatusIOError}, nil
	}

	var doc scannerCapabilities
	if err := xml.Unmarshal(body, &doc); err != nil {
		return device.Capabilities{}, device.OpResult{}, fmt.Errorf("%w: %v", errBadReply, err)
	}

	caps := device.Capabilities{
		Sources:      []string{"Platen"},
		UnitsPerInch: unitsPerInch,
		MaxWidthMM:   pxToMM(doc.Platen.PlatenInputCaps.MaxWidth, unitsPerInch),
		MaxHeightMM:  pxToMM(doc.Platen.PlatenInputCaps.MaxHeight, unitsPerInch),
		MinWidthMM:   pxToMM(doc.Platen.PlatenInputCaps.MinWidth, unitsPerInch),
		MinHeightMM:  pxToMM(doc.Platen.PlatenInputCaps.MinHeight, unitsPerInch),
	}

	if len(doc.Platen.PlatenInputCaps.SettingProfiles.SettingProfile) > 0 {
		profile := doc.Platen.PlatenInputCaps.SettingProfiles.SettingProfile[0]
		for _, c := range profile.ColorModes {
			caps.ColorModes = append(caps.ColorModes, colorModeFromWire(c))
		}
		for _, r := range profile.SupportedResolutions.DiscreteResolutions.DiscreteResolution {
			caps.Resolutions = append(caps.Resolutions, r.XResolution)
		}
	}
	if len(caps.ColorModes) == 0 {
		caps.ColorModes = []device.ColorMode{device.ColorModeRGB}
	}
	if len(caps.Resolutions) == 0 {
		caps.Resolutions = []int{unitsPerInch}
	}

	return caps, device.OpResult{NextOp: device.OpFinish, Status: device.StatusGood}, nil
}

func (h *Handler) BuildScan(_ context.Context, op device.OpContext) (device.HTTPRequest, error) {
	sel := op.Options.Selections
	settings := scanSettings{
		Version:     "2.63",
		InputSource: sel.Source,
		ColorMode:   wireColorMode(sel.ColorMode),
		XResolution: sel.Resolution,
		YResolution: sel.Resolution,
	}

	x := mmToWireUnits(sel.Geometry.TLX, sel.Geometry.BRX)
	y := mmToWireUnits(sel.Geometry.TLY, sel.Geometry.BRY)
	settings.ScanRegions.ScanRegion.XOffset = x.off
	settings.ScanRegions.ScanRegion.Width = x.len
	settings.ScanRegions.ScanRegion.YOffset = y.off
	settings.ScanRegions.ScanRegion.Height = y.len
	settings.ScanRegions.ScanRegion.ContentRegionUnits = "escl:ThreeHundredthsOfInches"

	body, err := xml.Marshal(settings)
	if err != nil {
		return device.HTTPRequest{}, err
	}
	return device.HTTPRequest{
		Method: "POST",
		Path:   "ScanJobs",
		Header: map[string]string{"Content-Type": "text/xml"},
		Body:   body,
	}, nil
}

func (h *Handler) DecodeScan(body []byte, header map[string][]string, statusCode int) (device.OpResult, error) {
	switch statusCode {
	case 201:
		location := firstHeader(header, "Location")
		if location == "" {
			return device.OpResult{NextOp: device.OpFinish, Status: device.StatusIOError}, nil
		}
		return device.OpResult{NextOp: device.OpLoad, Status: device.StatusGood, JobURI: location}, nil
	case 503:
		return device.OpResult{NextOp: device.OpScan, Delay: 1000, Status: device.StatusGood}, nil
	case 400, 409:
		return device.OpResult{NextOp: device.OpFinish, Status: device.StatusInval}, nil
	default:
		return device.OpResult{NextOp: device.OpFinish, Status: device.StatusIOError}, nil
	}
}

func (h *Handler) BuildLoad(_ context.Context, op device.OpContext) (device.HTTPRequest, error) {
	return device.HTTPRequest{Method: "GET", Path: jobPath(op.JobURI) + "/NextDocument"}, nil
}

func (h *Handler) DecodeLoad(body []byte, statusCode int) (device.OpResult, error) {
	switch statusCode {
	case 200:
		return device.OpResult{NextOp: device.OpLoad, Status: device.StatusGood, Image: body}, nil
	case 404, 410:
		// No more documents: the job's done producing pages.
		return device.OpResult{NextOp: device.OpCleanup, Status: device.StatusGood}, nil
	case 503:
		return device.OpResult{NextOp: device.OpLoad, Delay: 1000, Status: device.StatusGood}, nil
	default:
		return device.OpResult{NextOp: device.OpFinish, Status: device.StatusIOError}, nil
	}
}

func (h *Handler) BuildStatus(_ context.Context, op device.OpContext) (device.HTTPRequest, error) {
	return device.HTTPRequest{Method: "GET", Path: "ScannerStatus"}, nil
}

func (h *Handler) DecodeStatus(body []byte, statusCode int) (device.OpResult, error) {
	if statusCode != 200 {
		return device.OpResult{NextOp: device.OpFinish, Status: device.StatusIOError}, nil
	}

	var doc scannerStatus
	if err := xml.Unmarshal(body, &doc); err != nil {
		return device.OpResult{}, fmt.Errorf("%w: %v", errBadReply, err)
	}

	for _, job := range doc.Jobs.JobInfo {
		switch job.JobState {
		case jobStateCanceled, jobStateAborted:
			return device.OpResult{NextOp: device.OpCleanup, Status: device.StatusCancelled}, nil
		case jobStateCompleted:
			return device.OpResult{NextOp: device.OpCleanup, Status: device.StatusGood}, nil
		}
	}
	return device.OpResult{NextOp: device.OpStatus, Delay: 500, Status: device.StatusGood}, nil
}

func (h *Handler) BuildCancel(_ context.Context, op device.OpContext) (device.HTTPRequest, error) {
	return device.HTTPRequest{Method: "DELETE", Path: jobPath(op.JobURI)}, nil
}

func (h *Handler) BuildCleanup(_ context.Context, op device.OpContext) (device.HTTPRequest, error) {
	return device.HTTPRequest{Method: "DELETE", Path: jobPath(op.JobURI)}, nil
}

// DecodeFinish is the shared trivial decoder named in spec.md §6:
// CANCEL and CLEANUP replies always resolve to next=FINISH regardless
// of status code, since there is nothing further this chain can do.
func (h *Handler) DecodeFinish(body []byte, statusCode int) (device.OpResult, error) {
	return device.OpResult{NextOp: device.OpFinish, Status: device.StatusGood}, nil
}

// jobPath strips a job URI down to the path this handler's BaseURI-
// relative requests expect: the job resource's path component joined
// with operations like "/NextDocument".
func jobPath(jobURI string) string {
	if idx := strings.Index(jobURI, "ScanJobs/"); idx >= 0 {
		return jobURI[idx:]
	}
	return strings.TrimPrefix(jobURI, "/")
}

func firstHeader(h map[string][]string, key string) string {
	for k, vs := range h {
		if strings.EqualFold(k, key) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

func colorModeFromWire(s string) device.ColorMode {
	switch s {
	case "BlackAndWhite1":
		return device.ColorModeBlackAndWhite
	case "Grayscale8":
		return device.ColorModeGray
	default:
		return device.ColorModeRGB
	}
}

func wireColorMode(m device.ColorMode) string {
	if m == "" {
		return string(device.ColorModeRGB)
	}
	return string(m)
}

func pxToMM(px, unitsPerInch int) float64 {
	const mmPerInch = 25.4
	return float64(px) / float64(unitsPerInch) * mmPerInch
}

type wireWindow struct {
	off, len int
}

func mmToWireUnits(tl, br float64) wireWindow {
	const mmPerInch = 25.4
	off := int(tl / mmPerInch * unitsPerInch)
	length := int((br - tl) / mmPerInch * unitsPerInch)
	return wireWindow{off: off, len: length}
}
