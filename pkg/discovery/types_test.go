package discovery

import "testing"

func TestBaseURIDefaultsResourcePath(t *testing.T) {
	svc := ScannerService{Host: "192.168.1.50", Port: 80}
	if got, want := svc.BaseURI(), "http://192.168.1.50/eSCL/"; got != want {
		t.Errorf("BaseURI() = %q, want %q", got, want)
	}
}

func TestBaseURIHonorsResourcePathAndSlash(t *testing.T) {
	svc := ScannerService{Host: "192.168.1.50", Port: 8080, ResourcePath: "eSCL"}
	if got, want := svc.BaseURI(), "http://192.168.1.50:8080/eSCL/"; got != want {
		t.Errorf("BaseURI() = %q, want %q", got, want)
	}
}

func TestBaseURISecureOmitsDefaultPort(t *testing.T) {
	svc := ScannerService{Host: "scanner.local", Port: 443, Secure: true, ResourcePath: "eSCL"}
	if got, want := svc.BaseURI(), "https://scanner.local/eSCL/"; got != want {
		t.Errorf("BaseURI() = %q, want %q", got, want)
	}
}

func TestBaseURIFallsBackToAddress(t *testing.T) {
	svc := ScannerService{Addresses: []string{"10.0.0.5"}, Port: 80}
	if got, want := svc.BaseURI(), "http://10.0.0.5/eSCL/"; got != want {
		t.Errorf("BaseURI() = %q, want %q", got, want)
	}
}
