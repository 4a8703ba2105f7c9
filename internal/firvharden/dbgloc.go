package firvharden

import "reflect"

// copyMetadata preserves debug-location (and any other) metadata attachments
// verbatim from orig onto clone (§4.3: "Debug-location metadata on
// instructions is preserved verbatim during cloning and subsequent
// rewrites"). github.com/llir/llvm attaches metadata to instructions and
// terminators through a field named Metadata on the concrete type; a single
// reflective copy here avoids repeating the same two-line assignment in
// every arm of the instruction-kind switches in clone.go.
func copyMetadata(orig, clone any) {
	ov := reflect.ValueOf(orig)
	cv := reflect.ValueOf(clone)
	if ov.Kind() != reflect.Ptr || cv.Kind() != reflect.Ptr || ov.IsNil() || cv.IsNil() {
		return
	}
	of := ov.Elem().FieldByName("Metadata")
	cf := cv.Elem().FieldByName("Metadata")
	if !of.IsValid() || !cf.IsValid() || !cf.CanSet() {
		return
	}
	cf.Set(of)
}
