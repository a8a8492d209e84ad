package query

var setComparison = []*Definition{
	{
		Label:   "Find Departments That Have More Appointments Than the Average",
		Columns: []string{"DepartmentName", "TotalAppointments"},
		SQL: `SELECT d.DepartmentName, COUNT(a.AppointmentID) AS TotalAppointments
FROM Appointment a
INNER JOIN Doctor doc ON a.DoctorID = doc.DoctorID
INNER JOIN Department d ON doc.DepartmentID = d.DepartmentID
GROUP BY d.DepartmentName
HAVING COUNT(a.AppointmentID) > (
    SELECT AVG(TotalAppointments)
    FROM (
        SELECT COUNT(a2.AppointmentID) AS TotalAppointments
        FROM Appointment a2
        INNER JOIN Doctor doc2 ON a2.DoctorID = doc2.DoctorID
        INNER JOIN Department d2 ON doc2.DepartmentID = d2.DepartmentID
        GROUP BY d2.DepartmentName
    ) AS DeptAppointmentCounts
)`,
	},
	{
		Label:   "Compare Availability of Rooms Across Branches",
		Columns: []string{"RoomNumber"},
		SQL: `SELECT RoomNumber
FROM Room
WHERE Branch_ID = 1 AND Availability = TRUE
EXCEPT
SELECT RoomNumber
FROM Room
WHERE Branch_ID = 2 AND Availability = TRUE`,
	},
	{
		Label:   "Find Nurses Who Have Not Been Assigned Any Patients Recently",
		Columns: []string{"NurseID", "FirstName", "LastName"},
		SQL: `SELECT NurseID, FirstName, LastName
FROM Nurse
WHERE NurseID NOT IN (
    SELECT AssignedNurseID FROM HospitalStay
    WHERE AdmitDate >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)
)`,
	},
	{
		Label:   "Identify Patients Who Have Consulted Multiple Specialists",
		Columns: []string{"PatientID", "DepartmentCount"},
		SQL: `SELECT a.PatientID, COUNT(DISTINCT d.DepartmentID) AS DepartmentCount
FROM Appointment a
JOIN Doctor doc ON a.DoctorID = doc.DoctorID
JOIN Department d ON doc.DepartmentID = d.DepartmentID
GROUP BY a.PatientID
HAVING COUNT(DISTINCT d.DepartmentID) > 1`,
	},
	{
		Label:   "Compare Appointment Schedules to Identify Overlaps",
		Columns: []string{"DoctorID", "AppointmentDate", "AppointmentTime"},
		SQL: `SELECT a1.DoctorID, a1.AppointmentDate, a1.AppointmentTime
FROM Appointment a1
JOIN Appointment a2 ON a1.DoctorID = a2.DoctorID
WHERE a1.AppointmentID <> a2.AppointmentID
  AND a1.AppointmentDate = a2.AppointmentDate
  AND a1.AppointmentTime = a2.AppointmentTime`,
	},
	{
		// PatientHistory 不在管理目录中，需要在库中单独维护
		Label:   "Identify Patients Who Have Changed Their Phone Numbers",
		Columns: []string{"PatientID", "FirstName", "LastName", "CurrentPhone", "OldPhone"},
		SQL: `SELECT p.PatientID, p.FirstName, p.LastName, p.Phone AS CurrentPhone, ph.Phone AS OldPhone
FROM Patient p
JOIN PatientHistory ph ON p.PatientID = ph.PatientID
WHERE p.Phone <> ph.Phone`,
	},
	{
		Label:   "Identify High-Risk Patients Based on Multiple Admissions",
		Columns: []string{"PatientID", "AdmissionCount"},
		SQL: `SELECT PatientID, COUNT(*) AS AdmissionCount
FROM HospitalStay
WHERE AdmitDate >= DATE_SUB(CURDATE(), INTERVAL 1 YEAR)
GROUP BY PatientID
HAVING COUNT(*) > 3`,
	},
}
