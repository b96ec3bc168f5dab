// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package testutil holds helpers shared by Elyx tests.

  - context helpers: TestContext, TestContextWithTimeout, CancelledContext,
    each registering its cancel with t.Cleanup
  - assertions: AssertEventuallyTrue, AssertJSONEqual
  - data: MustJSON

testutil/mocks provides MockProvider, an llm.Provider that answers per
caller from scripted replies and records every request.

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().
		WithCallerResponses("Router", "Carla").
		WithResponse("ok")
*/
package testutil
