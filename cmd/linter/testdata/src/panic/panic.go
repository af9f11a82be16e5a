package panicpkg

func broken() {
	panic("boom") // want `panic\(\) should not be used in production code`
}
