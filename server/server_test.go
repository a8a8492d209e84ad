package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hatlonely/hms/admin"
	"github.com/hatlonely/hms/audit"
	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/database/dbtest"
	"github.com/hatlonely/hms/log"
	"github.com/hatlonely/hms/query"
	"github.com/hatlonely/hms/uid"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(t *testing.T, mode string) (*Server, *prometheus.Registry) {
	trail := audit.NewTrail(audit.NewMemoryStoreWithOptions(nil), uid.NewSnowflakeGenerator(&uid.SnowflakeOptions{MachineID: 1}))
	service, err := admin.NewServiceWithOptions(&admin.Options{Custom: admin.PolicyOptions{Mode: mode}}, dbtest.NewSeeded(t), trail, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	registry := prometheus.NewRegistry()
	s, err := NewServerWithOptions(&Options{MetricsPath: "/metrics"}, service, log.Discard(), registry)
	if err != nil {
		t.Fatal(err)
	}
	return s, registry
}

func do(s *Server, method string, target string, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	return w, m
}

const patientBody = `{
	"FirstName": "alice",
	"LastName": "smith",
	"Gender": "Female",
	"DateOfBirth": "1985-07-04",
	"Address": "3 Elm St",
	"Phone": "214-555-1003",
	"Email": "alice@example.com",
	"Branch_ID": 2
}`

func TestNewServerWithOptions(t *testing.T) {
	Convey("参数校验", t, func() {
		_, err := NewServerWithOptions(nil, nil, nil, nil)
		So(err, ShouldNotBeNil)
		_, err = NewServerWithOptions(&Options{}, nil, nil, nil)
		So(err, ShouldNotBeNil)
	})
}

func TestServer_Entities(t *testing.T) {
	Convey("实体接口", t, func() {
		s, _ := newTestServer(t, "")

		Convey("列出实体", func() {
			w, m := do(s, http.MethodGet, "/api/entities", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["entities"], ShouldHaveLength, 10)
		})

		Convey("读取全部记录", func() {
			w, m := do(s, http.MethodGet, "/api/entities/Patient", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["rows"], ShouldHaveLength, 2)
			So(m["columns"], ShouldContain, "FirstName")
		})

		Convey("未知实体返回 404", func() {
			w, m := do(s, http.MethodGet, "/api/entities/Pharmacy", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(m["error"], ShouldEqual, "Invalid table selected or table does not have a defined primary key.")
		})

		Convey("按主键读取", func() {
			w, m := do(s, http.MethodGet, "/api/entities/Patient/1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["FirstName"], ShouldEqual, "John")

			w, m = do(s, http.MethodGet, "/api/entities/Patient/99", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(m["error"], ShouldEqual, "No record found with ID 99 in the Patient table.")
		})

		Convey("创建记录", func() {
			w, m := do(s, http.MethodPost, "/api/entities/Patient", patientBody)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(m["message"], ShouldEqual, "Record successfully created in the Patient table.")

			w, m = do(s, http.MethodGet, "/api/entities/Patient/3", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["FirstName"], ShouldEqual, "Alice")
		})

		Convey("校验失败返回 400", func() {
			body := strings.Replace(patientBody, "214-555-1003", "2145551003", 1)
			w, m := do(s, http.MethodPost, "/api/entities/Patient", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(m["error"], ShouldStartWith, "Please correct the following fields: Phone")
		})

		Convey("唯一键冲突返回 409", func() {
			body := strings.Replace(patientBody, "214-555-1003", "214-555-1001", 1)
			w, m := do(s, http.MethodPost, "/api/entities/Patient", body)
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(m["error"], ShouldStartWith, "Error: Duplicate entry.")
		})

		Convey("请求体不合法返回 400", func() {
			w, _ := do(s, http.MethodPost, "/api/entities/Patient", "{")
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w, _ = do(s, http.MethodPost, "/api/entities/Patient", `{"FirstName": ["a"]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("单字段检查", func() {
			w, m := do(s, http.MethodPost, "/api/entities/Patient/check", `{"field": "Phone", "value": "214-555-1003"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["valid"], ShouldEqual, true)

			w, m = do(s, http.MethodPost, "/api/entities/Patient/check", `{"field": "Phone", "value": "2145551003"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(m["error"], ShouldStartWith, "Please correct the following fields: Phone")

			w, _ = do(s, http.MethodPost, "/api/entities/Billing/check", `{"field": "TotalAmount", "value": 12.5}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			w, _ = do(s, http.MethodPost, "/api/entities/Patient/check", `{"field": "Nickname", "value": "x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w, _ = do(s, http.MethodPost, "/api/entities/Patient/check", `{"value": "x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w, _ = do(s, http.MethodPost, "/api/entities/Pharmacy/check", `{"field": "Name", "value": "x"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)

			// 只校验，不写库
			_, m = do(s, http.MethodGet, "/api/entities/Patient", "")
			So(m["rows"], ShouldHaveLength, 2)
		})

		Convey("更新记录", func() {
			body := strings.Replace(patientBody, "214-555-1003", "214-555-1001", 1)
			body = strings.Replace(body, "alice@example.com", "john@example.com", 1)
			w, m := do(s, http.MethodPut, "/api/entities/Patient/1", body)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["message"], ShouldEqual, "Record in the Patient table successfully updated.")

			_, m = do(s, http.MethodGet, "/api/entities/Patient/1", "")
			So(m["FirstName"], ShouldEqual, "Alice")

			w, _ = do(s, http.MethodPut, "/api/entities/Patient/99", patientBody)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("删除记录", func() {
			w, m := do(s, http.MethodDelete, "/api/entities/Billing/1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["message"], ShouldEqual, "Record with ID 1 successfully deleted from the Billing table.")

			w, _ = do(s, http.MethodDelete, "/api/entities/Billing/1", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_Queries(t *testing.T) {
	Convey("查询接口", t, func() {
		s, _ := newTestServer(t, admin.ModeReadOnly)
		label := "Total Billing for Each Patient (Cumulative Sum)"

		Convey("列出分类", func() {
			w, m := do(s, http.MethodGet, "/api/queries", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["categories"], ShouldHaveLength, 7)
			So(m["policy"], ShouldEqual, admin.ModeReadOnly)
		})

		Convey("列出分类下的查询", func() {
			w, m := do(s, http.MethodGet, "/api/queries/OLAP", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["queries"], ShouldNotBeEmpty)

			w, _ = do(s, http.MethodGet, "/api/queries/Nothing", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("按分类和标签执行", func() {
			w, m := do(s, http.MethodPost, "/api/queries/run", `{"category": "OLAP", "label": "`+label+`"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["rows"], ShouldHaveLength, 3)
		})

		Convey("按 ID 执行", func() {
			w, m := do(s, http.MethodPost, "/api/queries/run", `{"id": "`+query.Slug(query.CategoryOLAP, label)+`"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["columns"], ShouldResemble, []any{"PatientID", "PaymentDate", "TotalAmount", "CumulativeTotalBilling"})

			w, _ = do(s, http.MethodPost, "/api/queries/run", `{"id": "olap/no-such-query"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)

			w, _ = do(s, http.MethodPost, "/api/queries/run", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("自定义查询", func() {
			w, m := do(s, http.MethodPost, "/api/queries/custom", `{"sql": "SELECT FirstName FROM Patient ORDER BY PatientID", "operator": "bob"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(m["rows"], ShouldHaveLength, 2)

			w, m = do(s, http.MethodPost, "/api/queries/custom", `{"sql": "DELETE FROM Billing"}`)
			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(m["error"], ShouldStartWith, "Custom query denied (readonly)")

			w, m = do(s, http.MethodGet, "/api/audit?n=10", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			entries := m["entries"].([]any)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].(map[string]any)["operator"], ShouldEqual, defaultOperator)
			So(entries[1].(map[string]any)["operator"], ShouldEqual, "bob")
		})

		Convey("审计参数不合法", func() {
			w, _ := do(s, http.MethodGet, "/api/audit?n=abc", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestServer_Misc(t *testing.T) {
	Convey("健康检查和指标", t, func() {
		s, registry := newTestServer(t, "")
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "hms_test_total", Help: "test"})
		registry.MustRegister(counter)
		counter.Inc()

		w, m := do(s, http.MethodGet, "/healthz", "")
		So(w.Code, ShouldEqual, http.StatusOK)
		So(m["status"], ShouldEqual, "ok")

		w, _ = do(s, http.MethodGet, "/metrics", "")
		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Body.String(), ShouldContainSubstring, "hms_test_total 1")

		w, _ = do(s, http.MethodGet, "/api/nothing", "")
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("CORS 预检", t, func() {
		s, _ := newTestServer(t, "")
		req := httptest.NewRequest(http.MethodOptions, "/api/entities", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
	})

	Convey("错误状态码", t, func() {
		So(statusCode(admin.ErrCustomQueryDenied), ShouldEqual, http.StatusForbidden)
		So(statusCode(query.ErrUnknownQuery), ShouldEqual, http.StatusNotFound)
		So(statusCode(catalog.ErrUnknownColumn), ShouldEqual, http.StatusBadRequest)
		So(statusCode(&admin.NotFoundError{Entity: "Patient", ID: 1}), ShouldEqual, http.StatusNotFound)
	})
}
