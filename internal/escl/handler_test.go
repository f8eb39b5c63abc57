package escl

import (
	"strings"
	"testing"

	"github.com/alexpevzner-fork/escl-scand/internal/device"
)

const capsXML = `<?xml version="1.0" encoding="UTF-8"?>
<scan:ScannerCapabilities xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03">
  <scan:Version>2.63</scan:Version>
  <scan:MakeAndModel>Example Scanner</scan:MakeAndModel>
  <scan:Platen>
    <scan:PlatenInputCaps>
      <scan:MinWidth>591</scan:MinWidth>
      <scan:MaxWidth>2550</scan:MaxWidth>
      <scan:MinHeight>591</scan:MinHeight>
      <scan:MaxHeight>3507</scan:MaxHeight>
      <scan:SettingProfiles>
        <scan:SettingProfile>
          <scan:ColorModes>
            <scan:ColorMode>RGB24</scan:ColorMode>
            <scan:ColorMode>Grayscale8</scan:ColorMode>
          </scan:ColorModes>
          <scan:DocumentFormats>
            <scan:DocumentFormat>image/jpeg</scan:DocumentFormat>
          </scan:DocumentFormats>
          <scan:SupportedResolutions>
            <scan:DiscreteResolutions>
              <scan:DiscreteResolution>
                <scan:XResolution>300</scan:XResolution>
              </scan:DiscreteResolution>
              <scan:DiscreteResolution>
                <scan:XResolution>600</scan:XResolution>
              </scan:DiscreteResolution>
            </scan:DiscreteResolutions>
          </scan:SupportedResolutions>
        </scan:SettingProfile>
      </scan:SettingProfiles>
    </scan:PlatenInputCaps>
  </scan:Platen>
</scan:ScannerCapabilities>`

func TestDecodeCapsParsesColorModesAndResolutions(t *testing.T) {
	h := New()
	caps, result, err := h.DecodeCaps([]byte(capsXML), 200)
	if err != nil {
		t.Fatalf("DecodeCaps() error = %v", err)
	}
	if result.Status != device.StatusGood {
		t.Fatalf("DecodeCaps() status = %s, want GOOD", result.Status)
	}
	if len(caps.ColorModes) != 2 || caps.ColorModes[0] != device.ColorModeRGB {
		t.Errorf("ColorModes = %v, want [RGB24 Grayscale8]", caps.ColorModes)
	}
	if len(caps.Resolutions) != 2 || caps.Resolutions[0] != 300 {
		t.Errorf("Resolutions = %v, want [300 600]", caps.Resolutions)
	}
	if caps.MaxWidthMM <= 0 || caps.MaxHeightMM <= 0 {
		t.Error("capability lengths should convert to positive millimetres")
	}
}

func TestDecodeCapsNonOKStatus(t *testing.T) {
	h := New()
	_, result, err := h.DecodeCaps(nil, 500)
	if err != nil {
		t.Fatalf("DecodeCaps() error = %v", err)
	}
	if result.Status != device.StatusIOError || result.NextOp != device.OpFinish {
		t.Errorf("DecodeCaps(500) = %+v, want IO_ERROR/FINISH", result)
	}
}

func TestDecodeScanExtractsLocation(t *testing.T) {
	h := New()
	header := map[string][]string{"Location": {"/eSCL/ScanJobs/abc-123"}}

	result, err := h.DecodeScan(nil, header, 201)
	if err != nil {
		t.Fatalf("DecodeScan() error = %v", err)
	}
	if result.NextOp != device.OpLoad || result.JobURI != "/eSCL/ScanJobs/abc-123" {
		t.Errorf("DecodeScan() = %+v, want next=LOAD with the Location job URI", result)
	}
}

func TestDecodeScanRetriesOn503(t *testing.T) {
	h := New()
	result, err := h.DecodeScan(nil, nil, 503)
	if err != nil {
		t.Fatalf("DecodeScan() error = %v", err)
	}
	if result.NextOp != device.OpScan || result.Delay <= 0 {
		t.Errorf("DecodeScan(503) = %+v, want a retry with positive delay", result)
	}
}

func TestDecodeLoadReturnsImageOn200(t *testing.T) {
	h := New()
	result, err := h.DecodeLoad([]byte("jpegbytes"), 200)
	if err != nil {
		t.Fatalf("DecodeLoad() error = %v", err)
	}
	if result.NextOp != device.OpLoad || string(result.Image) != "jpegbytes" {
		t.Errorf("DecodeLoad() = %+v, want image payload with next=LOAD", result)
	}
}

func TestDecodeLoadEndsJobOn404(t *testing.T) {
	h := New()
	result, err := h.DecodeLoad(nil, 404)
	if err != nil {
		t.Fatalf("DecodeLoad() error = %v", err)
	}
	if result.NextOp != device.OpCleanup || result.Status != device.StatusGood {
		t.Errorf("DecodeLoad(404) = %+v, want next=CLEANUP/GOOD", result)
	}
}

func TestDecodeFinishAlwaysFinishes(t *testing.T) {
	h := New()
	for _, code := range []int{200, 404, 500} {
		result, err := h.DecodeFinish(nil, code)
		if err != nil {
			t.Fatalf("DecodeFinish(%d) error = %v", code, err)
		}
		if result.NextOp != device.OpFinish {
			t.Errorf("DecodeFinish(%d).NextOp = %v, want FINISH", code, result.NextOp)
		}
	}
}

func TestJobPathExtractsScanJobsSuffix(t *testing.T) {
	got := jobPath("http://printer.local/eSCL/ScanJobs/abc-123")
	want := "ScanJobs/abc-123"
	if got != want {
		t.Errorf("jobPath() = %q, want %q", got, want)
	}
}

func TestBuildScanEncodesSelectedGeometry(t *testing.T) {
	h := New()
	ctx := device.OpContext{
		BaseURI: "http://printer.local/eSCL/",
		Options: device.OptionState{
			Selections: device.Selections{
				Source:     "Platen",
				ColorMode:  device.ColorModeGray,
				Resolution: 300,
				Geometry:   device.Geometry{BRX: 210, BRY: 297},
			},
		},
	}
	req, err := h.BuildScan(nil, ctx)
	if err != nil {
		t.Fatalf("BuildScan() error = %v", err)
	}
	if req.Method != "POST" || req.Path != "ScanJobs" {
		t.Errorf("BuildScan() request = %+v, want POST ScanJobs", req)
	}
	if len(req.Body) == 0 {
		t.Error("BuildScan() produced an empty body")
	}
	// 210mm x 297mm at 300 units per inch.
	body := string(req.Body)
	for _, want := range []string{"<Width>2480</Width>", "<Height>3507</Height>"} {
		if !strings.Contains(body, want) {
			t.Errorf("BuildScan() body missing %s: %s", want, body)
		}
	}
}
