//go:build windows

package spooler

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modwinspool = windows.NewLazySystemDLL("winspool.drv")

	procOpenPrinterW     = modwinspool.NewProc("OpenPrinterW")
	procClosePrinter     = modwinspool.NewProc("ClosePrinter")
	procStartDocPrinterW = modwinspool.NewProc("StartDocPrinterW")
	procEndDocPrinter    = modwinspool.NewProc("EndDocPrinter")
	procStartPagePrinter = modwinspool.NewProc("StartPagePrinter")
	procEndPagePrinter   = modwinspool.NewProc("EndPagePrinter")
	procWritePrinter     = modwinspool.NewProc("WritePrinter")
)

// docInfo1 соответствует DOC_INFO_1W
type docInfo1 struct {
	DocName    *uint16
	OutputFile *uint16
	Datatype   *uint16
}

// WinSpooler работает с очередью печати Windows через winspool.drv
type WinSpooler struct{}

// Default возвращает спулер текущей платформы
func Default() Spooler {
	return WinSpooler{}
}

func (WinSpooler) Open(printer string) (Job, error) {
	name, err := windows.UTF16PtrFromString(printer)
	if err != nil {
		return nil, err
	}
	var h windows.Handle
	r1, _, e1 := procOpenPrinterW.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(&h)), 0)
	if r1 == 0 {
		return nil, callErr(e1)
	}
	return &winJob{handle: h}, nil
}

type winJob struct {
	handle windows.Handle
}

func (j *winJob) StartDocument(name, dataType string) error {
	docName, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	dt, err := windows.UTF16PtrFromString(dataType)
	if err != nil {
		return err
	}
	info := docInfo1{DocName: docName, Datatype: dt}
	r1, _, e1 := procStartDocPrinterW.Call(uintptr(j.handle), 1, uintptr(unsafe.Pointer(&info)))
	if r1 == 0 {
		return callErr(e1)
	}
	return nil
}

func (j *winJob) StartPage() error {
	return boolCall(procStartPagePrinter, uintptr(j.handle))
}

func (j *winJob) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var written uint32
	r1, _, e1 := procWritePrinter.Call(
		uintptr(j.handle),
		uintptr(unsafe.Pointer(&p[0])),
		uintptr(uint32(len(p))),
		uintptr(unsafe.Pointer(&written)),
	)
	if r1 == 0 {
		return int(written), callErr(e1)
	}
	return int(written), nil
}

func (j *winJob) EndPage() error {
	return boolCall(procEndPagePrinter, uintptr(j.handle))
}

func (j *winJob) EndDocument() error {
	return boolCall(procEndDocPrinter, uintptr(j.handle))
}

func (j *winJob) Close() error {
	return boolCall(procClosePrinter, uintptr(j.handle))
}

func boolCall(proc *windows.LazyProc, args ...uintptr) error {
	r1, _, e1 := proc.Call(args...)
	if r1 == 0 {
		return callErr(e1)
	}
	return nil
}

// callErr подставляет EINVAL, если GetLastError вернул 0
func callErr(err error) error {
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		return syscall.EINVAL
	}
	return err
}
